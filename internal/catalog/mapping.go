package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Target is what one source-catalog shelf translates to on the sink side:
// either a single-valued reading status or a list to add the book to.
// Exactly one of the two fields is set.
type Target struct {
	Status string `yaml:"status,omitempty"`
	ListID int    `yaml:"list,omitempty"`
}

// Mapping translates source-catalog shelf names into sink-catalog statuses
// and list memberships. Shelves with no entry are unknown and get reported
// by the reconciliation engine, never guessed.
type Mapping map[string]Target

// Status returns the mapped status for shelf, if any.
func (m Mapping) Status(shelf string) (string, bool) {
	target, ok := m[shelf]
	if !ok || target.Status == "" {
		return "", false
	}
	return target.Status, true
}

// ListID returns the mapped list id for shelf, if any.
func (m Mapping) ListID(shelf string) (int, bool) {
	target, ok := m[shelf]
	if !ok || target.ListID == 0 {
		return 0, false
	}
	return target.ListID, true
}

// LoadMapping reads a vocabulary mapping from a YAML file of the form:
//
//	Przeczytane:
//	  status: read
//	Posiadam:
//	  list: 12345
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var mapping Mapping
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}

	for shelf, target := range mapping {
		if target.Status == "" && target.ListID == 0 {
			return nil, fmt.Errorf("mapping entry %q has neither status nor list", shelf)
		}
		if target.Status != "" && target.ListID != 0 {
			return nil, fmt.Errorf("mapping entry %q has both status and list", shelf)
		}
	}

	return mapping, nil
}
