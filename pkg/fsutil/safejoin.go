package fsutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeJoin joins base and elem, rejecting the result if it would escape base.
// Used wherever a path component originates from kit metadata or environment
// parameters and must not be allowed to traverse outside a known directory.
func SafeJoin(base string, elem ...string) (string, error) {
	if base == "" {
		return "", ErrBasePath
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}

	joined := filepath.Join(append([]string{absBase}, elem...)...)

	rel, err := filepath.Rel(absBase, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathOutsideBase
	}

	return joined, nil
}
