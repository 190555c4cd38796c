package env

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileList is the ordered sequence of files the Environment Composer merges
// to build the parameter and manifest views, per the §4.7 file sequence.
type FileList struct {
	Prologue     string
	KitFragments []string
	CloudConfig  string // empty when the deployment is self-contained
	Ancestors    []string
	Epilogue     string
}

// ParameterFiles returns the subset of the list that contributes to the
// parameter view: prologue + ancestors (with their inherited files already
// interleaved by the caller) + epilogue.
func (l FileList) ParameterFiles() []string {
	files := make([]string, 0, len(l.Ancestors)+2)
	files = append(files, l.Prologue)
	files = append(files, l.Ancestors...)
	files = append(files, l.Epilogue)

	return files
}

// ManifestFiles returns the full list used for the manifest view: kit
// fragments and cloud-config are merged in addition to the parameter files,
// in the documented order.
func (l FileList) ManifestFiles() []string {
	files := make([]string, 0, len(l.KitFragments)+len(l.Ancestors)+3)
	files = append(files, l.Prologue)
	files = append(files, l.KitFragments...)

	if l.CloudConfig != "" {
		files = append(files, l.CloudConfig)
	}

	files = append(files, l.Ancestors...)
	files = append(files, l.Epilogue)

	return files
}

// InheritsResolver looks up the ordered `genesis.inherits` list declared
// inside an ancestor file, returning the sibling file stems (without
// extension) that must be merged before it.
type InheritsResolver func(ancestorFile string) ([]string, error)

// BuildAncestorChain resolves name's ancestor file sequence against root,
// keeping only files that exist on disk, and inserts any file transitively
// referenced by a `genesis.inherits` list immediately before the ancestor
// that references it.
func BuildAncestorChain(root string, name Name, resolveInherits InheritsResolver) ([]string, error) {
	var chain []string
	seen := make(map[string]bool)

	var visit func(stem string) error
	visit = func(stem string) error {
		if seen[stem] {
			return nil
		}

		file := filepath.Join(root, stem+".yml")

		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return fmt.Errorf("stat %s: %w", file, err)
		}

		if resolveInherits != nil {
			inherited, err := resolveInherits(file)
			if err != nil {
				return fmt.Errorf("resolve inherits for %s: %w", file, err)
			}

			for _, dep := range inherited {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		seen[stem] = true
		chain = append(chain, file)

		return nil
	}

	for _, stem := range name.AncestorStems() {
		if err := visit(stem); err != nil {
			return nil, err
		}
	}

	return chain, nil
}
