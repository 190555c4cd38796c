package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergedManifestSource_Redact_ReturnsInputUnchanged(t *testing.T) {
	t.Parallel()

	m := &mergedManifestSource{}

	manifest, vars, err := m.Redact([]byte("name: myenv\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("name: myenv\n"), manifest)
	assert.Equal(t, []byte("{}\n"), vars)
}

func TestMergedManifestSource_Cached_MissingReturnsFalse(t *testing.T) {
	t.Parallel()

	m := &mergedManifestSource{workdir: t.TempDir()}

	data, ok, err := m.Cached("myenv")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestMergedManifestSource_Cached_ReadsExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".genesis", "manifests"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".genesis", "manifests", "myenv.yml"), []byte("name: myenv\n"), 0o644))

	m := &mergedManifestSource{workdir: dir}

	data, ok, err := m.Cached("myenv")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "name: myenv\n", string(data))
}

func TestWriteMergeTempFile_WritesAndCleansUp(t *testing.T) {
	t.Parallel()

	path, cleanup, err := writeMergeTempFile([]byte("name: myenv\n"))
	require.NoError(t, err)
	defer cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name: myenv\n", string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
