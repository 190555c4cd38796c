package plan_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/genesisproject/genesis/pkg/kit"
	"github.com/genesisproject/genesis/pkg/plan"
)

func TestParse_RandomCredentialRequiresKey(t *testing.T) {
	t.Parallel()

	meta := kit.Metadata{
		Credentials: map[string]map[string]any{
			"base": {"admin/password": "random 32"},
		},
	}

	plans := plan.Parse(meta, nil, plan.Options{})
	assertSinglePlan(t, plans, plan.KindError)
}

func TestParse_RandomCredentialWithKey(t *testing.T) {
	t.Parallel()

	meta := kit.Metadata{
		Credentials: map[string]map[string]any{
			"base": {"admin/password:value": "random 32 fmt crypt"},
		},
	}

	plans := plan.Parse(meta, nil, plan.Options{})
	p := assertSinglePlan(t, plans, plan.KindRandom)
	assert.Equal(t, "admin/password", p.Path)
	assert.Equal(t, "value", p.Key)
	assert.Equal(t, 32, p.Size)
	assert.Equal(t, "crypt", p.Format)
}

func TestParse_SSHAndRSAAndDHParams(t *testing.T) {
	t.Parallel()

	meta := kit.Metadata{
		Credentials: map[string]map[string]any{
			"base": {
				"host_key": "ssh 2048 fixed",
				"tls_key":  "rsa 4096",
				"dh":       "dhparams 2048",
			},
		},
	}

	plans := plan.Parse(meta, nil, plan.Options{})
	byPath := indexByPath(plans)

	assert.Equal(t, plan.KindSSH, byPath["host_key"].Kind)
	assert.True(t, byPath["host_key"].Fixed)
	assert.Equal(t, plan.KindRSA, byPath["tls_key"].Kind)
	assert.Equal(t, 4096, byPath["tls_key"].Size)
	assert.Equal(t, plan.KindDHParams, byPath["dh"].Kind)
}

func TestParse_UnrecognizedCredentialBecomesError(t *testing.T) {
	t.Parallel()

	meta := kit.Metadata{
		Credentials: map[string]map[string]any{
			"base": {"weird": "not-a-real-form"},
		},
	}

	plans := plan.Parse(meta, nil, plan.Options{})
	p := assertSinglePlan(t, plans, plan.KindError)
	assert.Contains(t, p.Error, "unrecognized credential form")
}

func TestParse_CertificateInheritsBasePath(t *testing.T) {
	t.Parallel()

	meta := kit.Metadata{
		Certificates: map[string]map[string]any{
			"base": {
				"tls/ca": map[string]any{"is_ca": true, "names": []any{"ca.example"}},
			},
		},
	}

	plans := plan.Parse(meta, nil, plan.Options{})
	p := assertSinglePlan(t, plans, plan.KindX509)
	assert.Equal(t, "tls", p.BasePath)
	assert.True(t, p.IsCA)
}

func TestParse_CertificateNamesAndUsagePreserveDeclaredOrder(t *testing.T) {
	t.Parallel()

	meta := kit.Metadata{
		Certificates: map[string]map[string]any{
			"base": {
				"tls/server": map[string]any{
					"names": []any{"server.example", "server.internal", "*.server.example"},
					"usage": []any{"server_auth", "digital_signature"},
				},
			},
		},
	}

	plans := plan.Parse(meta, nil, plan.Options{})
	p := assertSinglePlan(t, plans, plan.KindX509)

	wantNames := []string{"server.example", "server.internal", "*.server.example"}
	if diff := cmp.Diff(wantNames, p.Names); diff != "" {
		t.Errorf("certificate names mismatch (-want +got):\n%s", diff)
	}

	wantUsage := []string{"server_auth", "digital_signature"}
	if diff := cmp.Diff(wantUsage, p.Usage); diff != "" {
		t.Errorf("certificate usage mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFilter_NegationAndCaseInsensitive(t *testing.T) {
	t.Parallel()

	f, err := plan.ParseFilter(`!/tls\//i`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}

	assert.False(t, f.Match("TLS/ca"))
	assert.True(t, f.Match("other/path"))
}

func assertSinglePlan(t *testing.T, plans []plan.Plan, kind plan.Kind) plan.Plan {
	t.Helper()

	if len(plans) != 1 {
		t.Fatalf("expected exactly 1 plan, got %d: %v", len(plans), plans)
	}

	assert.Equal(t, kind, plans[0].Kind)

	return plans[0]
}

func indexByPath(plans []plan.Plan) map[string]plan.Plan {
	out := make(map[string]plan.Plan, len(plans))
	for _, p := range plans {
		out[p.Path] = p
	}

	return out
}
