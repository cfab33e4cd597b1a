// Package rules defines the cleanup rule model and the report shapes produced
// by evaluating rules.
package rules

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidRule is returned by Validate for malformed rules.
var ErrInvalidRule = errors.New("invalid rule")

// Type selects how a rule is evaluated.
type Type string

const (
	TypePath       Type = "path"
	TypePattern    Type = "pattern"
	TypeSpecial    Type = "special"
	TypeRegistry   Type = "registry"
	TypeAppResidue Type = "app_residue"
)

// Known reports whether t is one of the defined rule types.
func (t Type) Known() bool {
	switch t {
	case TypePath, TypePattern, TypeSpecial, TypeRegistry, TypeAppResidue:
		return true
	}
	return false
}

// Action is what a clean does with a matched target.
type Action string

const (
	ActionDelete   Action = "delete"
	ActionRecycle  Action = "recycle"
	ActionToolCall Action = "tool_call"
)

// Known reports whether a is one of the defined actions.
func (a Action) Known() bool {
	switch a {
	case ActionDelete, ActionRecycle, ActionToolCall:
		return true
	}
	return false
}

// Risk is the user-facing risk level of a rule.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Rule is one declarative cleanup target. Rules are never modified during
// evaluation.
type Rule struct {
	ID               string `yaml:"id" json:"id"`
	Title            string `yaml:"title" json:"title"`
	Description      string `yaml:"description,omitempty" json:"description,omitempty"`
	Category         string `yaml:"category" json:"category"`
	Risk             Risk   `yaml:"risk" json:"risk"`
	DefaultChecked   bool   `yaml:"default_checked" json:"default_checked"`
	RequiresAdmin    bool   `yaml:"requires_admin" json:"requires_admin"`
	Type             Type   `yaml:"type" json:"rule_type"`
	Scope            string `yaml:"scope,omitempty" json:"scope,omitempty"`
	Path             string `yaml:"path,omitempty" json:"path,omitempty"`
	Pattern          string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	SizeThresholdMB  *int64 `yaml:"size_threshold_mb,omitempty" json:"size_threshold_mb,omitempty"`
	AgeThresholdDays *int64 `yaml:"age_threshold_days,omitempty" json:"age_threshold_days,omitempty"`
	Action           Action `yaml:"action" json:"action"`
	ToolCmd          string `yaml:"tool_cmd,omitempty" json:"tool_cmd,omitempty"`
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	SortOrder        int64  `yaml:"sort_order" json:"sort_order"`
	Notes            string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Validate checks the fields every rule needs regardless of type.
// Type-specific gaps (a path rule without a path) are reported at
// evaluation time instead, as a status.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRule)
	}
	if !r.Type.Known() {
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidRule, r.ID, r.Type)
	}
	if !r.Action.Known() {
		return fmt.Errorf("%w: %s: unknown action %q", ErrInvalidRule, r.ID, r.Action)
	}
	if r.SizeThresholdMB != nil && *r.SizeThresholdMB < 0 {
		return fmt.Errorf("%w: %s: negative size threshold", ErrInvalidRule, r.ID)
	}
	if r.AgeThresholdDays != nil && *r.AgeThresholdDays < 0 {
		return fmt.Errorf("%w: %s: negative age threshold", ErrInvalidRule, r.ID)
	}
	return nil
}

// Int64 returns a pointer to v, for optional thresholds.
func Int64(v int64) *int64 {
	return &v
}

// Days converts a day count to a duration, saturating at the largest
// representable duration instead of wrapping negative.
func Days(n int64) time.Duration {
	const day = int64(24 * time.Hour)
	if n > math.MaxInt64/day {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(n * day)
}

// Megabytes converts a size in MB to bytes, saturating at math.MaxInt64.
func Megabytes(n int64) int64 {
	const mb = 1024 * 1024
	if n > math.MaxInt64/mb {
		return math.MaxInt64
	}
	return n * mb
}

// View is a rule annotated with whether the current process may run it.
type View struct {
	Rule
	Blocked       bool   `json:"blocked"`
	BlockedReason string `json:"blocked_reason,omitempty"`
}

// BlockedReason is the message attached to rules that need elevation.
const BlockedReason = "Requires administrator privileges"

// WithPrivilege annotates rs with their blocked state for isAdmin.
func WithPrivilege(rs []Rule, isAdmin bool) []View {
	views := make([]View, 0, len(rs))
	for _, r := range rs {
		v := View{Rule: r}
		if r.RequiresAdmin && !isAdmin {
			v.Blocked = true
			v.BlockedReason = BlockedReason
		}
		views = append(views, v)
	}
	return views
}
