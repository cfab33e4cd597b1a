//go:build !windows

// Package trash moves files to the platform's reversible trash: the Recycle
// Bin on Windows, the freedesktop.org trash on Linux and ~/.Trash on macOS.
package trash

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Trash moves files into a trash directory.
type Trash struct {
	dir string
	// flat trashes (macOS ~/.Trash) have no files/ and info/ split.
	flat bool
	now  func() time.Time
}

// New returns the platform trash for the current user.
func New() *Trash {
	if runtime.GOOS == "darwin" {
		return &Trash{dir: filepath.Join(xdg.Home, ".Trash"), flat: true, now: time.Now}
	}
	return NewAt(filepath.Join(xdg.DataHome, "Trash"))
}

// NewAt returns a freedesktop.org trash rooted at dir.
func NewAt(dir string) *Trash {
	return &Trash{dir: dir, now: time.Now}
}

// Dir returns the trash root.
func (t *Trash) Dir() string { return t.dir }

// Submit moves path into the trash. The move is a rename or hard link, so
// files on a different filesystem than the trash cannot be trashed and
// return an error.
func (t *Trash) Submit(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return err
	}

	if t.flat {
		if err := os.MkdirAll(t.dir, 0o700); err != nil {
			return fmt.Errorf("creating trash dir: %w", err)
		}
		return t.submitFlat(abs, info.Mode().IsRegular())
	}

	filesDir := filepath.Join(t.dir, "files")
	if err := os.MkdirAll(filepath.Join(t.dir, "info"), 0o700); err != nil {
		return fmt.Errorf("creating trash info dir: %w", err)
	}
	if err := os.MkdirAll(filesDir, 0o700); err != nil {
		return fmt.Errorf("creating trash dir: %w", err)
	}

	name, infoPath, err := t.reserve(filepath.Base(abs), abs)
	if err != nil {
		return err
	}
	if err := os.Rename(abs, filepath.Join(filesDir, name)); err != nil {
		_ = os.Remove(infoPath)
		return fmt.Errorf("moving %s to trash: %w", abs, err)
	}
	return nil
}

const maxNames = 1000

// trashName returns the i-th candidate name for base: base itself, then
// name.1.ext, name.2.ext and so on.
func trashName(base string, i int) string {
	if i == 0 {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + strconv.Itoa(i) + ext
}

// submitFlat moves abs into a flat trash. A regular file is hard linked
// under its new name, which fails if the name is taken, and only then
// unlinked, so concurrent submits never replace each other. Directories
// and filesystems without hard links fall back to check-then-rename.
func (t *Trash) submitFlat(abs string, regular bool) error {
	base := filepath.Base(abs)
	for i := 0; i < maxNames; i++ {
		dest := filepath.Join(t.dir, trashName(base, i))
		if regular {
			err := os.Link(abs, dest)
			if err == nil {
				if err := os.Remove(abs); err != nil {
					_ = os.Remove(dest)
					return fmt.Errorf("moving %s to trash: %w", abs, err)
				}
				return nil
			}
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			regular = false
		}
		if _, err := os.Lstat(dest); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.Rename(abs, dest); err != nil {
			return fmt.Errorf("moving %s to trash: %w", abs, err)
		}
		return nil
	}
	return fmt.Errorf("no free trash name for %s", base)
}

// reserve picks an unused name in a freedesktop trash and claims it by
// exclusively creating its .trashinfo file.
func (t *Trash) reserve(base, orig string) (name, infoPath string, err error) {
	for i := 0; i < maxNames; i++ {
		name = trashName(base, i)
		infoPath = filepath.Join(t.dir, "info", name+".trashinfo")
		f, openErr := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(openErr, fs.ErrExist) {
			continue
		}
		if openErr != nil {
			return "", "", fmt.Errorf("creating trash info: %w", openErr)
		}
		_, writeErr := fmt.Fprintf(f, "[Trash Info]\nPath=%s\nDeletionDate=%s\n",
			escapePath(orig), t.now().Format("2006-01-02T15:04:05"))
		closeErr := f.Close()
		if err := errors.Join(writeErr, closeErr); err != nil {
			_ = os.Remove(infoPath)
			return "", "", fmt.Errorf("writing trash info: %w", err)
		}
		return name, infoPath, nil
	}
	return "", "", fmt.Errorf("no free trash name for %s", base)
}

// escapePath percent-encodes each segment of p, keeping the separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

// Usage returns the total size and top-level item count of the trash.
func (t *Trash) Usage() (bytes, items int64, err error) {
	filesDir := t.dir
	if !t.flat {
		filesDir = filepath.Join(t.dir, "files")
	}
	entries, err := os.ReadDir(filesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	items = int64(len(entries))

	err = filepath.WalkDir(filesDir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.Type().IsRegular() {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil {
			bytes += info.Size()
		}
		return nil
	})
	return bytes, items, err
}
