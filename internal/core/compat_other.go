//go:build !windows

package core

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// OSVersionString describes the running OS, e.g. "linux 6.8.0 (x86_64)".
func OSVersionString() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return runtime.GOOS
	}
	return fmt.Sprintf("%s %s (%s)", runtime.GOOS, unix.ByteSliceToString(u.Release[:]), unix.ByteSliceToString(u.Machine[:]))
}
