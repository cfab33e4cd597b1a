package uninstall

import (
	"fmt"
	"os"
	"strings"
)

// pathExists is the existence probe used by FindOrphans.
var pathExists = func(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsOrphan reports whether reg looks abandoned: it has no install location
// that exists on disk, and it lacks either a display name or an uninstall
// command. A record with both of those is left alone even when its location
// is stale, since its uninstaller may still work.
func IsOrphan(reg Registration, exists func(string) bool) bool {
	loc := strings.TrimSpace(reg.InstallLocation)
	installMissing := loc == "" || !exists(loc)
	if !installMissing {
		return false
	}
	displayMissing := strings.TrimSpace(reg.DisplayName) == ""
	uninstallMissing := strings.TrimSpace(reg.UninstallString) == ""
	return displayMissing || uninstallMissing
}

// FindOrphans returns every orphaned record in store. Unsupported stores
// yield ErrUnsupported.
func FindOrphans(store Store) ([]Registration, error) {
	if !store.Supported() {
		return nil, ErrUnsupported
	}
	regs, err := store.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerating registrations: %w", err)
	}

	var orphans []Registration
	for _, reg := range regs {
		if IsOrphan(reg, pathExists) {
			orphans = append(orphans, reg)
		}
	}
	return orphans, nil
}
