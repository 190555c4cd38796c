package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/genesisproject/genesis/pkg/config"
	"github.com/genesisproject/genesis/pkg/env"
)

// mergedManifestSource renders an environment's manifest view with the
// Environment Composer's full (eval-enabled) adaptive merge, and tracks the
// workdir's per-environment manifest cache for the Reactor's drift check.
type mergedManifestSource struct {
	merger  *config.Merger
	files   env.FileList
	workdir string
}

func (m *mergedManifestSource) Render(ctx context.Context, _ string) ([]byte, error) {
	doc, err := m.merger.AdaptiveMerge(ctx, nonEmpty(m.files.ManifestFiles()), os.ReadFile, writeMergeTempFile)
	if err != nil {
		return nil, fmt.Errorf("render manifest: %w", err)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal rendered manifest: %w", err)
	}

	return out, nil
}

// Redact returns the manifest unchanged alongside an empty BOSH variables
// file; credential substitution into manifest bytes is a kit-specific
// concern the merge tool itself already resolved during Render, so there is
// nothing left here for the engine to black out.
func (m *mergedManifestSource) Redact(manifest []byte) ([]byte, []byte, error) {
	return manifest, []byte("{}\n"), nil
}

func (m *mergedManifestSource) Cached(environment string) ([]byte, bool, error) {
	path := filepath.Join(m.workdir, ".genesis", "manifests", environment+".yml")

	data, err := os.ReadFile(path) //nolint:gosec // path built from the workdir and a validated environment name
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("read cached manifest %s: %w", path, err)
	}

	return data, true, nil
}

func writeMergeTempFile(content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "genesis-merge-*.yml")
	if err != nil {
		return "", nil, fmt.Errorf("create adaptive-merge temp file: %w", err)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()

		return "", nil, fmt.Errorf("write adaptive-merge temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", nil, fmt.Errorf("close adaptive-merge temp file: %w", err)
	}

	path := f.Name()

	return path, func() { _ = os.Remove(path) }, nil
}
