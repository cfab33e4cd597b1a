//go:build windows

package uninstall

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// ─── Registry Sources ────────────────────────────────────────────────────────

// registrySource describes one registry hive + path to scan.
type registrySource struct {
	hive string
	root registry.Key
	path string
}

const (
	uninstallPath      = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`
	uninstallPathWOW64 = `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`
)

// uninstallSources are the per-machine and per-user uninstall roots, each
// with its 32-bit compatibility mirror.
var uninstallSources = []registrySource{
	{"HKLM", registry.LOCAL_MACHINE, uninstallPath},
	{"HKLM", registry.LOCAL_MACHINE, uninstallPathWOW64},
	{"HKCU", registry.CURRENT_USER, uninstallPath},
	{"HKCU", registry.CURRENT_USER, uninstallPathWOW64},
}

// ─── Store ───────────────────────────────────────────────────────────────────

// RegistryStore reads and deletes uninstall records in the Windows registry.
type RegistryStore struct{}

// NewRegistryStore returns the platform registration store.
func NewRegistryStore() *RegistryStore { return &RegistryStore{} }

// Supported implements Store.
func (*RegistryStore) Supported() bool { return true }

// Enumerate implements Store.
func (*RegistryStore) Enumerate() ([]Registration, error) {
	var regs []Registration
	for _, src := range uninstallSources {
		found, err := readRegistrations(src)
		if err != nil {
			// WOW6432Node is absent on 32-bit systems, and HKCU mirrors
			// rarely exist; skip silently.
			continue
		}
		regs = append(regs, found...)
	}
	return regs, nil
}

// DeleteSubtree implements Store.
func (*RegistryStore) DeleteSubtree(reg Registration) error {
	root, err := hiveKey(reg.Hive)
	if err != nil {
		return err
	}
	if err := deleteKeyTree(root, reg.Key); err != nil {
		return fmt.Errorf("deleting %s: %w", reg.ID(), err)
	}
	return nil
}

// ─── Registry Helpers ────────────────────────────────────────────────────────

func hiveKey(hive string) (registry.Key, error) {
	switch hive {
	case "HKLM":
		return registry.LOCAL_MACHINE, nil
	case "HKCU":
		return registry.CURRENT_USER, nil
	}
	return 0, fmt.Errorf("unknown hive %q", hive)
}

// readRegistrations enumerates subkeys under one uninstall root.
func readRegistrations(src registrySource) ([]Registration, error) {
	key, err := registry.OpenKey(src.root, src.path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	subkeys, err := key.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}

	regs := make([]Registration, 0, len(subkeys))
	for _, name := range subkeys {
		reg, readErr := readRegistration(src, name)
		if readErr != nil {
			continue
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// readRegistration reads the three fields the detectors need.
func readRegistration(src registrySource, name string) (Registration, error) {
	path := src.path + `\` + name
	key, err := registry.OpenKey(src.root, path, registry.QUERY_VALUE)
	if err != nil {
		return Registration{}, err
	}
	defer key.Close()

	return Registration{
		Hive:            src.hive,
		Key:             path,
		DisplayName:     readStringValue(key, "DisplayName"),
		UninstallString: readStringValue(key, "UninstallString"),
		InstallLocation: readStringValue(key, "InstallLocation"),
	}, nil
}

// readStringValue safely reads a string value from a registry key.
// Returns an empty string on any error.
func readStringValue(key registry.Key, name string) string {
	val, _, err := key.GetStringValue(name)
	if err != nil {
		return ""
	}
	return val
}

// deleteKeyTree removes path and all of its subkeys, deepest first.
// A key that is already gone is not an error.
func deleteKeyTree(root registry.Key, path string) error {
	key, err := registry.OpenKey(root, path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return err
	}
	children, err := key.ReadSubKeyNames(-1)
	key.Close()
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := deleteKeyTree(root, path+`\`+child); err != nil {
			return err
		}
	}

	if err := registry.DeleteKey(root, path); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	return nil
}
