// Package env implements environment name validation/decomposition and the
// Environment Composer's ordered file-list construction.
package env

import (
	"fmt"
	"regexp"
	"strings"
)

// namePattern matches a valid environment name: lowercase start, lowercase
// alphanumerics/hyphen/underscore body, lowercase alphanumeric end.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*[a-z0-9]$`)

// Name is a validated environment name.
type Name string

// ParseName validates raw against the environment name grammar: it must
// match ^[a-z][a-z0-9_-]*[a-z0-9]$, contain no whitespace, and contain no
// consecutive hyphens.
func ParseName(raw string) (Name, error) {
	if strings.ContainsAny(raw, " \t\n\r") {
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, raw)
	}

	if strings.Contains(raw, "--") {
		return "", fmt.Errorf("%w: %q contains consecutive hyphens", ErrInvalidName, raw)
	}

	if !namePattern.MatchString(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, raw)
	}

	return Name(raw), nil
}

// AncestorStems returns the hyphen-prefix hierarchy of file stems for name: for
// `a-b-c-d` that is [a, a-b, a-b-c, a-b-c-d].
func (n Name) AncestorStems() []string {
	parts := strings.Split(string(n), "-")

	stems := make([]string, 0, len(parts))

	for i := range parts {
		stems = append(stems, strings.Join(parts[:i+1], "-"))
	}

	return stems
}

// AncestorFiles returns AncestorStems with the ".yml" extension appended.
func (n Name) AncestorFiles() []string {
	stems := n.AncestorStems()
	files := make([]string, len(stems))

	for i, s := range stems {
		files[i] = s + ".yml"
	}

	return files
}
