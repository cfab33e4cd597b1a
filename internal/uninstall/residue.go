package uninstall

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultResidueCutoff is how old a folder must be before it is considered
// residue, when neither config nor the rule override it.
const DefaultResidueCutoff = 180 * 24 * time.Hour

// residueRootVars name the install roots searched for residue.
var residueRootVars = []string{
	"ProgramFiles",
	"ProgramFiles(x86)",
	"ProgramData",
	"LOCALAPPDATA",
	"APPDATA",
}

// DefaultResidueRoots returns the install roots from the environment,
// skipping unset variables and duplicates.
func DefaultResidueRoots() []string {
	seen := make(map[string]bool)
	var roots []string
	for _, name := range residueRootVars {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			continue
		}
		key := foldPath(filepath.Clean(v))
		if seen[key] {
			continue
		}
		seen[key] = true
		roots = append(roots, v)
	}
	return roots
}

// ResidueDetector finds top-level folders in Roots that no registration
// claims and that have not been modified within the cutoff.
type ResidueDetector struct {
	Store Store
	Roots []string
	Now   func() time.Time
}

// Candidates returns residue directories older than cutoff.
func (d ResidueDetector) Candidates(cutoff time.Duration) ([]string, error) {
	if !d.Store.Supported() {
		return nil, ErrUnsupported
	}
	if cutoff < 0 {
		return nil, fmt.Errorf("negative residue cutoff %s", cutoff)
	}
	regs, err := d.Store.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerating registrations: %w", err)
	}

	var installed []string
	for _, reg := range regs {
		if loc := strings.TrimSpace(reg.InstallLocation); loc != "" {
			installed = append(installed, loc)
		}
	}

	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}

	var candidates []string
	for _, root := range d.Roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			path := filepath.Join(root, e.Name())
			if coveredByAny(path, installed) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			age := now.Sub(info.ModTime())
			if age < 0 || age < cutoff {
				continue
			}
			candidates = append(candidates, path)
		}
	}
	return candidates, nil
}

// coveredByAny reports whether path equals or lies beneath any of dirs.
func coveredByAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if isWithin(path, dir) {
			return true
		}
	}
	return false
}

// isWithin compares whole path segments, so C:\Apps\Foo2 is not within
// C:\Apps\Foo. Comparison ignores case on Windows.
func isWithin(path, dir string) bool {
	p := foldPath(filepath.Clean(path))
	d := foldPath(filepath.Clean(dir))
	if p == d {
		return true
	}
	if !strings.HasSuffix(d, string(filepath.Separator)) {
		d += string(filepath.Separator)
	}
	return strings.HasPrefix(p, d)
}

func foldPath(p string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(p)
	}
	return p
}
