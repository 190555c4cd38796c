package env

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// declaration captures the genesis.env and genesis.inherits fields an
// environment file may declare; everything else in the document passes
// through to the merge views untouched.
type declaration struct {
	Genesis struct {
		Env      string   `yaml:"env"`
		Inherits []string `yaml:"inherits"`
	} `yaml:"genesis"`
}

// Load reads name's own file under root and verifies it declares its own
// name in genesis.env, per the documented environment-file requirement.
func Load(root string, name Name) ([]byte, error) {
	path := filepath.Join(root, string(name)+".yml")

	content, err := os.ReadFile(path) //nolint:gosec // path built from a validated Name, not external input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}

		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var decl declaration

	if err := yaml.Unmarshal(content, &decl); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if decl.Genesis.Env != string(name) {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnvDeclaration, path)
	}

	return content, nil
}

// ResolveInherits implements InheritsResolver against a file already on
// disk, extracting its declared genesis.inherits list. A file with no such
// declaration (or that does not exist) resolves to no ancestors.
func ResolveInherits(ancestorFile string) ([]string, error) {
	content, err := os.ReadFile(ancestorFile) //nolint:gosec // path constructed by BuildAncestorChain from a validated root/Name
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read %s: %w", ancestorFile, err)
	}

	var decl declaration

	if err := yaml.Unmarshal(content, &decl); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ancestorFile, err)
	}

	return decl.Genesis.Inherits, nil
}
