//go:build !windows

package uninstall

// RegistryStore is the registration store for this platform. There is no
// registration database here, so it is permanently empty.
type RegistryStore struct{}

// NewRegistryStore returns the platform registration store.
func NewRegistryStore() *RegistryStore { return &RegistryStore{} }

// Supported implements Store.
func (*RegistryStore) Supported() bool { return false }

// Enumerate implements Store.
func (*RegistryStore) Enumerate() ([]Registration, error) { return nil, nil }

// DeleteSubtree implements Store.
func (*RegistryStore) DeleteSubtree(Registration) error { return ErrUnsupported }
