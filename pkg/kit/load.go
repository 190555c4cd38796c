package kit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadMetadata reads and parses a kit's metadata file (kit.yml) from path.
func LoadMetadata(path string) (Metadata, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path supplied by the caller's own kit resolution, not external input
	if err != nil {
		return Metadata{}, fmt.Errorf("read kit metadata %s: %w", path, err)
	}

	var meta Metadata

	if err := yaml.Unmarshal(content, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse kit metadata %s: %w", path, err)
	}

	return meta, nil
}
