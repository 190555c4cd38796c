package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisproject/genesis/pkg/plan"
)

func TestOrder_SingleCASignsSiblings(t *testing.T) {
	t.Parallel()

	plans := []plan.Plan{
		{Kind: plan.KindX509, Path: "tls/server", BasePath: "tls"},
		{Kind: plan.KindX509, Path: "tls/ca", BasePath: "tls", IsCA: true},
	}

	ordered := plan.Order(plans, "")

	byPath := make(map[string]plan.Plan)
	for _, p := range ordered {
		byPath[p.Path] = p
	}

	assert.Equal(t, "tls/ca", byPath["tls/server"].SignedBy)
	assert.Equal(t, "tls/ca", ordered[0].Path, "signer must be emitted before signed")
}

func TestOrder_AmbiguousCAsMarkError(t *testing.T) {
	t.Parallel()

	plans := []plan.Plan{
		{Kind: plan.KindX509, Path: "tls/server", BasePath: "tls"},
		{Kind: plan.KindX509, Path: "tls/ca1", BasePath: "tls", IsCA: true},
		{Kind: plan.KindX509, Path: "tls/ca2", BasePath: "tls", IsCA: true},
	}

	ordered := plan.Order(plans, "")

	for _, p := range ordered {
		if p.Path == "tls/server" {
			assert.Equal(t, plan.KindError, p.Kind)
			assert.Contains(t, p.Error, "Ambiguous")
		}
	}
}

func TestOrder_UnsignedWithoutRootCABecomesSelfSigned(t *testing.T) {
	t.Parallel()

	plans := []plan.Plan{
		{Kind: plan.KindX509, Path: "standalone/ca", BasePath: "standalone", IsCA: true},
	}

	ordered := plan.Order(plans, "")
	assert.Equal(t, plan.SelfSignedImplicit, ordered[0].SelfSigned)
}

func TestOrder_RootCAPathSignsOrphans(t *testing.T) {
	t.Parallel()

	plans := []plan.Plan{
		{Kind: plan.KindX509, Path: "standalone/leaf", BasePath: "standalone"},
	}

	ordered := plan.Order(plans, "/root/ca")
	assert.Equal(t, "/root/ca", ordered[0].SignedBy)
	assert.True(t, ordered[0].SignedByAbsPath)
}

func TestOrder_CycleDetected(t *testing.T) {
	t.Parallel()

	plans := []plan.Plan{
		{Kind: plan.KindX509, Path: "a", BasePath: "x", SignedBy: "b"},
		{Kind: plan.KindX509, Path: "b", BasePath: "x", SignedBy: "a", IsCA: true},
	}

	ordered := plan.Order(plans, "")

	require.Len(t, ordered, 2, "both cyclic plans must be converted to error, not kept and duplicated")

	for _, p := range ordered {
		assert.Equal(t, plan.KindError, p.Kind, "plan %s must be converted to error", p.Path)
		assert.Equal(t, "Cyclical CA signage detected", p.Error)
	}
}
