//go:build windows

package core

import (
	"golang.org/x/sys/windows"
)

// windowsVersion returns the running kernel's major, minor and build numbers.
// RtlGetNtVersionNumbers works without a compatibility manifest, unlike
// GetVersionEx.
func windowsVersion() (major, minor, build uint32) {
	major, minor, build = windows.RtlGetNtVersionNumbers()
	// The build number comes back with high flag bits set.
	build &= 0xFFFF
	return major, minor, build
}

// OSVersionString describes the running OS, e.g. "Windows 11 (Build 22631)".
func OSVersionString() string {
	return windowsName(windowsVersion())
}
