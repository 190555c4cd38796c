package kit

import "github.com/Masterminds/semver/v3"

// versionAtLeast reports whether candidate >= min, treating unparsable
// version strings as satisfying. This only runs once CompatibleFrom is
// known to be set; a malformed version string is a kit-authoring defect,
// not grounds to fail a deploy.
func versionAtLeast(candidate, min string) bool {
	c, err := semver.NewVersion(candidate)
	if err != nil {
		return true
	}

	m, err := semver.NewVersion(min)
	if err != nil {
		return true
	}

	return c.Compare(m) >= 0
}
