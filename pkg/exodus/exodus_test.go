package exodus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisproject/genesis/pkg/exodus"
)

func TestFlatten_NestedKeysAndVarResolution(t *testing.T) {
	t.Parallel()

	tree := map[string]any{
		"version":   1,
		"timestamp": "2026-07-30",
		"db": map[string]any{
			"password": "((db_password))",
			"host":     "db.internal",
		},
	}

	resolve := func(name string) (string, bool) {
		if name == "db_password" {
			return "resolved-secret", true
		}

		return "", false
	}

	flat := exodus.Flatten(tree, resolve)

	assert.Equal(t, "resolved-secret", flat["db.password"])
	assert.Equal(t, "db.internal", flat["db.host"])
	assert.Equal(t, "1", flat["version"])
}

func TestFlatten_UnresolvedVarLeftAsIs(t *testing.T) {
	t.Parallel()

	tree := map[string]any{"token": "((missing))"}

	flat := exodus.Flatten(tree, func(string) (string, bool) { return "", false })
	assert.Equal(t, "((missing))", flat["token"])
}

type fakePublisher struct {
	removed []string
	sets    map[string]map[string]string
}

func (f *fakePublisher) Rm(_ context.Context, path string) error {
	f.removed = append(f.removed, path)

	return nil
}

func (f *fakePublisher) SetAll(_ context.Context, path string, values map[string]string) error {
	if f.sets == nil {
		f.sets = make(map[string]map[string]string)
	}

	f.sets[path] = values

	return nil
}

func TestPublish_ClearsThenSetsWithManifestSHA1(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}

	rec := exodus.Record{
		Mount:        "secret/exodus",
		Environment:  "prod-east",
		Type:         "my-kit",
		Values:       map[string]string{"version": "1"},
		ManifestSHA1: "abc123",
	}

	err := exodus.Publish(context.Background(), pub, rec)
	require.NoError(t, err)

	const path = "secret/exodus/prod-east/my-kit"

	assert.Equal(t, []string{path}, pub.removed)
	assert.Equal(t, "abc123", pub.sets[path]["manifest_sha1"])
	assert.Equal(t, "1", pub.sets[path]["version"])
}

func TestManifestSHA1_Deterministic(t *testing.T) {
	t.Parallel()

	a := exodus.ManifestSHA1([]byte("manifest content"))
	b := exodus.ManifestSHA1([]byte("manifest content"))
	c := exodus.ManifestSHA1([]byte("different"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
