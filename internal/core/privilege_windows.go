//go:build windows

package core

import "golang.org/x/sys/windows"

// IsElevated reports whether the process token is elevated (running as
// Administrator with UAC consent).
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
