// Package uninstall reads installer registration records and detects two
// kinds of leftovers: orphaned registrations and residue directories in the
// well-known install roots. Both detectors are heuristics; callers must
// surface the matching advisory alongside any result.
package uninstall

import "errors"

// ErrUnsupported is returned by stores on platforms without a registration
// database.
var ErrUnsupported = errors.New("registration store not supported on this platform")

// Registration is one uninstall record.
type Registration struct {
	// Hive is the root the record lives under ("HKLM" or "HKCU").
	Hive string `json:"hive"`

	// Key is the full subkey path, e.g.
	// SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\{GUID}.
	Key string `json:"key"`

	DisplayName     string `json:"display_name"`
	UninstallString string `json:"uninstall_string"`
	InstallLocation string `json:"install_location"`
}

// ID returns a stable identifier for the record.
func (r Registration) ID() string {
	return r.Hive + `\` + r.Key
}

// Store enumerates and deletes uninstall registrations.
type Store interface {
	// Supported reports whether this platform has a registration database.
	Supported() bool

	// Enumerate returns every record under the standard uninstall roots.
	// Roots that are absent are skipped.
	Enumerate() ([]Registration, error)

	// DeleteSubtree removes a record and everything below it. Deleting a
	// record that no longer exists succeeds.
	DeleteSubtree(reg Registration) error
}

const (
	// OrphanAdvisory accompanies every registry rule clean outcome.
	OrphanAdvisory = "Only orphan uninstall keys with missing InstallLocation were removed. Portable apps may be misdetected; review carefully."

	// OrphanScanAdvisory accompanies registry rule scans, where nothing is removed.
	OrphanScanAdvisory = "Orphan uninstall keys with missing InstallLocation would be removed. Portable apps may be misdetected; review carefully."

	// ResidueAdvisory accompanies every residue rule clean outcome.
	ResidueAdvisory = "Removed old folders not linked to uninstall records. Portable apps may be misdetected; review carefully."

	// ResidueScanAdvisory accompanies residue rule scans.
	ResidueScanAdvisory = "Old folders not linked to uninstall records would be removed. Portable apps may be misdetected; review carefully."
)
