package clean

import (
	"time"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
)

// Thresholds are the optional per-rule inclusion limits. A nil field places
// no constraint on that axis.
type Thresholds struct {
	MinSize *int64
	MinAge  *time.Duration
}

// ThresholdsFor converts a rule's MB/day limits to bytes and durations.
// Negative limits are ignored. Limits too large to represent saturate.
func ThresholdsFor(r rules.Rule) Thresholds {
	var t Thresholds
	if r.SizeThresholdMB != nil && *r.SizeThresholdMB >= 0 {
		n := rules.Megabytes(*r.SizeThresholdMB)
		t.MinSize = &n
	}
	if r.AgeThresholdDays != nil && *r.AgeThresholdDays >= 0 {
		d := rules.Days(*r.AgeThresholdDays)
		t.MinAge = &d
	}
	return t
}

// Include reports whether a file of the given size and mtime passes t.
// An age that cannot be computed (zero mtime, or mtime after now) passes.
func Include(size int64, mtime, now time.Time, t Thresholds) bool {
	if t.MinSize != nil && size < *t.MinSize {
		return false
	}
	if t.MinAge != nil && !mtime.IsZero() {
		if age := now.Sub(mtime); age >= 0 && age < *t.MinAge {
			return false
		}
	}
	return true
}
