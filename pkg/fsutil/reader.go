package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFileSafe reads path after verifying it resolves inside baseDir. path may
// be given relative to baseDir or already absolute (as long as it still
// resolves inside baseDir); either way the final location is checked with
// SafeJoin-equivalent logic before the read.
func ReadFileSafe(baseDir, path string) ([]byte, error) {
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, target)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}

	rel, err := filepath.Rel(absBase, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, ErrPathOutsideBase
	}

	content, err := os.ReadFile(target) //nolint:gosec // path validated above
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", target, err)
	}

	return content, nil
}
