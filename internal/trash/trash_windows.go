//go:build windows

// Package trash moves files to the platform's reversible trash: the Recycle
// Bin on Windows, the freedesktop.org trash on Linux and ~/.Trash on macOS.
package trash

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ─── Shell32 Syscalls ────────────────────────────────────────────────────────

var (
	modShell32          = windows.NewLazySystemDLL("shell32.dll")
	procFileOperation   = modShell32.NewProc("SHFileOperationW")
	procQueryRecycleBin = modShell32.NewProc("SHQueryRecycleBinW")
)

const (
	foDelete          = 0x0003
	fofSilent         = 0x0004
	fofNoConfirmation = 0x0010
	fofAllowUndo      = 0x0040
	fofNoErrorUI      = 0x0400
)

// shFileOpStruct mirrors SHFILEOPSTRUCTW with natural alignment, which
// matches the 64-bit layout.
type shFileOpStruct struct {
	hwnd                  uintptr
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

// shQueryRBInfo mirrors the Windows SHQUERYRBINFO struct.
// Go's natural alignment adds padding after cbSize on AMD64,
// matching the C struct layout on both 32-bit and 64-bit.
type shQueryRBInfo struct {
	cbSize      uint32
	i64Size     int64
	i64NumItems int64
}

// ─── Recycle Bin ─────────────────────────────────────────────────────────────

// Trash submits files to the Recycle Bin.
type Trash struct{}

// New returns the platform trash.
func New() *Trash { return &Trash{} }

// Submit moves path to the Recycle Bin via SHFileOperationW with
// FOF_ALLOWUNDO, so it can be restored from Explorer.
func (*Trash) Submit(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	from, err := windows.UTF16FromString(abs)
	if err != nil {
		return err
	}
	// pFrom is a double-NUL-terminated list.
	from = append(from, 0)

	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  &from[0],
		fFlags: fofAllowUndo | fofNoConfirmation | fofSilent | fofNoErrorUI,
	}
	ret, _, _ := procFileOperation.Call(uintptr(unsafe.Pointer(&op)))
	if ret != 0 {
		return fmt.Errorf("SHFileOperationW failed for %s: code 0x%x", path, uint32(ret))
	}
	if op.fAnyOperationsAborted != 0 {
		return fmt.Errorf("recycle of %s was aborted", path)
	}
	return nil
}

// Usage returns the total size and item count of the Recycle Bin across
// all drives using the SHQueryRecycleBinW Shell API.
func (*Trash) Usage() (bytes, items int64, err error) {
	var info shQueryRBInfo
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, _ := procQueryRecycleBin.Call(
		0, // NULL = query all drives
		uintptr(unsafe.Pointer(&info)),
	)
	if ret != 0 {
		return 0, 0, fmt.Errorf("SHQueryRecycleBinW failed: HRESULT 0x%08x", uint32(ret))
	}
	return info.i64Size, info.i64NumItems, nil
}
