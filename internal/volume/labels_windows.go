//go:build windows

package volume

import (
	"context"
	"strings"

	"github.com/yusufpapurcu/wmi"
)

type win32LogicalDisk struct {
	DeviceID   string
	VolumeName string
}

// labels maps drive keys ("C:") to volume labels. WMI failures yield no
// labels rather than an error.
func labels(ctx context.Context) map[string]string {
	var disks []win32LogicalDisk
	done := make(chan error, 1)
	go func() {
		done <- wmi.Query("SELECT DeviceID, VolumeName FROM Win32_LogicalDisk", &disks)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		if err != nil {
			return nil
		}
	}

	out := make(map[string]string, len(disks))
	for _, d := range disks {
		if d.VolumeName != "" {
			out[strings.ToUpper(d.DeviceID)] = d.VolumeName
		}
	}
	return out
}
