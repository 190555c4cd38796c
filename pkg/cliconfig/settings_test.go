package cliconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisproject/genesis/pkg/cliconfig"
)

func TestLoad_DefaultsToCurrentDirectoryAbsolute(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cwd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(dir))

	t.Cleanup(func() { _ = os.Chdir(cwd) })

	v := cliconfig.NewViper()

	settings, err := cliconfig.Load(v)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	gotResolved, err := filepath.EvalSymlinks(settings.Workdir)
	require.NoError(t, err)

	assert.Equal(t, resolved, gotResolved)
}

func TestLoad_ExpandsHomeRelativeWorkdir(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	dir := t.TempDir()
	yml := "workdir: \"~/\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".genesis.yml"), []byte(yml), 0o600))

	v := cliconfig.NewViper()
	v.AddConfigPath(dir)

	settings, err := cliconfig.Load(v)
	require.NoError(t, err)

	assert.Equal(t, home, settings.Workdir)
}

func TestLoad_LeavesEmptyRootCAPathAlone(t *testing.T) {
	t.Parallel()

	v := cliconfig.NewViper()

	settings, err := cliconfig.Load(v)
	require.NoError(t, err)

	assert.Empty(t, settings.RootCAPath)
}
