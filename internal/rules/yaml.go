package rules

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk YAML shape used by import and export.
type Catalog struct {
	Version int    `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// CatalogVersion is written by Encode.
const CatalogVersion = 1

// Decode reads a YAML catalog and validates every rule in it.
// Duplicate ids are rejected.
func Decode(r io.Reader) ([]Rule, error) {
	var cat Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding rule catalog: %w", err)
	}

	seen := make(map[string]bool, len(cat.Rules))
	for i, r := range cat.Rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidRule, r.ID)
		}
		seen[r.ID] = true
	}
	return cat.Rules, nil
}

// Encode writes rs as a YAML catalog.
func Encode(w io.Writer, rs []Rule) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Catalog{Version: CatalogVersion, Rules: rs}); err != nil {
		return fmt.Errorf("encoding rule catalog: %w", err)
	}
	return enc.Close()
}
