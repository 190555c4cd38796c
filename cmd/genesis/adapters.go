package main

import (
	"context"

	"github.com/genesisproject/genesis/pkg/plan"
	"github.com/genesisproject/genesis/pkg/store"
)

// storeRunner adapts a *store.Client to plan.Runner, passing every argument
// through unchanged; plan paths are already rebased onto the environment's
// secrets base by applySecretsBase.
type storeRunner struct {
	client *store.Client
}

func (r storeRunner) Run(ctx context.Context, args []string) (string, int, error) {
	return r.client.QueryRaw(ctx, args...)
}

// storeChecker adapts an environmentContext's plans/store client into a
// reactor.SecretChecker by fetching the secrets base's export once and
// running the Plan Validator over every plan.
type storeChecker struct {
	envCtx *environmentContext
}

func (c storeChecker) Check(ctx context.Context) ([]plan.ValidationResult, error) {
	exported, err := c.envCtx.Client.Export(ctx, c.envCtx.SecretsBase)
	if err != nil {
		return nil, err
	}

	lookup := func(path string) (plan.StoredSecret, bool) {
		secret, ok := exported[path]

		return secret, ok
	}

	results := make([]plan.ValidationResult, 0, len(c.envCtx.Plans))

	for _, p := range c.envCtx.Plans {
		secret := exported[p.Path]
		results = append(results, plan.Validate(p, secret, lookup))
	}

	return results, nil
}
