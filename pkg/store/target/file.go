package target

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/genesisproject/genesis/pkg/store"
)

// fileEntry is one `{name, url, verify}` record in a target file.
type fileEntry struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Verify bool   `yaml:"verify"`
}

// LoadFile reads a flat YAML list of target entries from path and builds a
// Registry from it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied CLI configuration, not request input
	if err != nil {
		return nil, fmt.Errorf("read target file %s: %w", path, err)
	}

	var entries []fileEntry

	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse target file %s: %w", path, err)
	}

	targets := make([]store.Target, 0, len(entries))

	for _, e := range entries {
		targets = append(targets, store.Target{Name: e.Name, URL: e.URL, Verify: e.Verify})
	}

	registry, err := New(targets)
	if err != nil {
		return nil, fmt.Errorf("build target registry from %s: %w", path, err)
	}

	return registry, nil
}
