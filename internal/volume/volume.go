// Package volume reports mounted volume capacity for the drives a cleanup
// touches.
package volume

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Volume is one mounted filesystem.
type Volume struct {
	Mount       string  `json:"mount"`
	Device      string  `json:"device"`
	FSType      string  `json:"fs_type"`
	Label       string  `json:"label,omitempty"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// List returns physical volumes sorted by mount point. Volumes whose usage
// cannot be read (empty card readers, stale network mounts) are skipped.
func List(ctx context.Context) ([]Volume, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	names := labels(ctx)

	seen := make(map[string]bool)
	var out []Volume
	for _, p := range parts {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		v, err := Usage(ctx, p.Mountpoint)
		if err != nil || v.Total == 0 {
			continue
		}
		v.Device = p.Device
		if v.FSType == "" {
			v.FSType = p.Fstype
		}
		v.Label = names[driveKey(p.Mountpoint)]
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mount < out[j].Mount })
	return out, nil
}

// Usage reads capacity for the volume containing path.
func Usage(ctx context.Context, path string) (Volume, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Volume{}, fmt.Errorf("failed to read usage of %s: %w", path, err)
	}
	return Volume{
		Mount:       path,
		FSType:      u.Fstype,
		Total:       u.Total,
		Used:        u.Used,
		Free:        u.Free,
		UsedPercent: u.UsedPercent,
	}, nil
}

// ForDrive reads usage for a drive key such as "C:".
func ForDrive(ctx context.Context, drive string) (Volume, error) {
	if drive == "" {
		return Volume{}, fmt.Errorf("empty drive")
	}
	return Usage(ctx, strings.TrimSuffix(drive, `\`)+`\`)
}

// driveKey turns "C:\" or "c:" into "C:"; other mount points pass through.
func driveKey(mount string) string {
	m := strings.TrimRight(mount, `\/`)
	if len(m) == 2 && m[1] == ':' {
		return strings.ToUpper(m)
	}
	return mount
}
