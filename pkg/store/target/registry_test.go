package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisproject/genesis/pkg/store"
)

func TestNew_AllowsTargetsSharingAURL(t *testing.T) {
	t.Parallel()

	registry, err := New([]store.Target{
		{Name: "primary", URL: "https://vault.example.com"},
		{Name: "mirror", URL: "https://vault.example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://vault.example.com"}, registry.CollidingURLs())
}

func TestNew_RejectsInvalidURL(t *testing.T) {
	t.Parallel()

	_, err := New([]store.Target{{Name: "bad", URL: "not-a-url"}})
	require.ErrorIs(t, err, store.ErrInvalidTargetURL)
}

func TestResolve_AmbiguousURLWithoutAcceptAll(t *testing.T) {
	t.Parallel()

	registry, err := New([]store.Target{
		{Name: "primary", URL: "https://vault.example.com"},
		{Name: "mirror", URL: "https://vault.example.com"},
	})
	require.NoError(t, err)

	_, err = registry.Resolve("https://vault.example.com", false)
	require.ErrorIs(t, err, store.ErrAmbiguousTarget)
}

func TestResolve_AmbiguousURLWithAcceptAllReturnsBoth(t *testing.T) {
	t.Parallel()

	registry, err := New([]store.Target{
		{Name: "primary", URL: "https://vault.example.com"},
		{Name: "mirror", URL: "https://vault.example.com"},
	})
	require.NoError(t, err)

	matches, err := registry.Resolve("https://vault.example.com", true)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestResolve_ByNameIsUnambiguous(t *testing.T) {
	t.Parallel()

	registry, err := New([]store.Target{
		{Name: "primary", URL: "https://vault.example.com"},
		{Name: "mirror", URL: "https://vault.example.com"},
	})
	require.NoError(t, err)

	matches, err := registry.Resolve("mirror", false)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "https://vault.example.com", matches[0].URL)
}

func TestCollidingURLs_EmptyWhenAllUnique(t *testing.T) {
	t.Parallel()

	registry, err := New([]store.Target{
		{Name: "primary", URL: "https://vault.example.com"},
		{Name: "staging", URL: "https://vault-staging.example.com"},
	})
	require.NoError(t, err)

	assert.Empty(t, registry.CollidingURLs())
}
