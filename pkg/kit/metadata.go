// Package kit models the kit metadata tree: an opaque structure supplied by
// an external kit whose certificates.<feature>.<path> and
// credentials.<feature>.<path> subtrees the core interprets. Everything
// else in the tree (hook scripts, required-config declarations, fragment
// file names) passes through untouched.
package kit

import "fmt"

// baseFeature is always enabled, regardless of what the environment requests.
const baseFeature = "base"

// Metadata is the opaque kit tree. Only the certificates/credentials
// subtrees are interpreted here; everything else is carried for callers
// that need it (hook resolution, fragment selection, required configs).
type Metadata struct {
	Certificates map[string]map[string]any `yaml:"certificates"`
	Credentials  map[string]map[string]any `yaml:"credentials"`

	Hooks           map[string]string   `yaml:"hooks"`
	Fragments       map[string][]string `yaml:"fragments"`
	RequiredConfigs []RequiredConfig    `yaml:"required_configs"`
	CompatibleFrom  string              `yaml:"genesis_version_min"`
}

// RequiredConfig is a (type, name) pair a kit declares it needs fetched
// from the BOSH director before deploy.
type RequiredConfig struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// Entry is one flattened leaf from the certificates/credentials subtrees:
// the dotted path it was found at, which group ("certificates" or
// "credentials") it came from, and its raw value.
type Entry struct {
	Group string
	Path  string
	Value any
}

// Flatten walks the certificates.<feature> and credentials.<feature>
// subtrees for every feature in features (with "base" prepended when it is
// absent; an explicitly listed "base" keeps its position), producing one
// Entry per leaf. Ordering within a feature is
// certificates before credentials; features are visited in the order
// given.
func Flatten(meta Metadata, features []string) []Entry {
	ordered := prependBase(features)

	var entries []Entry

	for _, feature := range ordered {
		if tree, ok := meta.Certificates[feature]; ok {
			entries = append(entries, flattenTree("certificates", tree)...)
		}

		if tree, ok := meta.Credentials[feature]; ok {
			entries = append(entries, flattenTree("credentials", tree)...)
		}
	}

	return entries
}

func prependBase(features []string) []string {
	for _, f := range features {
		if f == baseFeature {
			return features
		}
	}

	out := make([]string, 0, len(features)+1)
	out = append(out, baseFeature)
	out = append(out, features...)

	return out
}

func flattenTree(group string, tree map[string]any) []Entry {
	var entries []Entry

	for path, value := range tree {
		switch v := value.(type) {
		case map[string]any:
			entries = append(entries, flattenNested(group, path, v)...)
		default:
			entries = append(entries, Entry{Group: group, Path: path, Value: value})
		}
	}

	return entries
}

func flattenNested(group, prefix string, tree map[string]any) []Entry {
	var entries []Entry

	for key, value := range tree {
		path := fmt.Sprintf("%s/%s", prefix, key)

		switch v := value.(type) {
		case map[string]any:
			entries = append(entries, flattenNested(group, path, v)...)
		default:
			entries = append(entries, Entry{Group: group, Path: path, Value: value})
		}
	}

	return entries
}

// CompatibleWith reports whether a kit declaring CompatibleFrom is usable
// by a core claiming coreVersion. Absent metadata (no CompatibleFrom
// declared) defaults to fail-closed: a kit that has never declared a
// minimum core version is treated as incompatible rather than silently
// trusted, diverging intentionally from the original's permissive default.
func CompatibleWith(meta Metadata, coreVersion string) bool {
	if meta.CompatibleFrom == "" {
		return false
	}

	return versionAtLeast(coreVersion, meta.CompatibleFrom)
}
