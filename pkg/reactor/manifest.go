package reactor

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// parseExodusTree extracts the `exodus` subtree of a rendered manifest.
func parseExodusTree(manifest []byte) (map[string]any, error) {
	var doc map[string]any

	if err := yaml.Unmarshal(manifest, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	tree, ok := doc["exodus"].(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}

	return tree, nil
}

// varResolver builds an Exodus var-resolution function backed by a
// BOSH-variables file (YAML name: value), the documented fallback source
// before credhub for unresolved `((var))` references.
func varResolver(varsFile []byte) func(name string) (string, bool) {
	var vars map[string]string

	if err := yaml.Unmarshal(varsFile, &vars); err != nil {
		return func(string) (string, bool) { return "", false }
	}

	return func(name string) (string, bool) {
		v, ok := vars[name]

		return v, ok
	}
}
