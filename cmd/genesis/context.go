package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jinzhu/copier"

	"github.com/genesisproject/genesis/pkg/cliconfig"
	"github.com/genesisproject/genesis/pkg/config"
	"github.com/genesisproject/genesis/pkg/env"
	"github.com/genesisproject/genesis/pkg/fsutil"
	"github.com/genesisproject/genesis/pkg/kit"
	"github.com/genesisproject/genesis/pkg/plan"
	"github.com/genesisproject/genesis/pkg/store"
)

// environmentContext bundles everything a secrets/deploy/check command needs
// once an environment name has resolved: its merged parameter view, the
// dereferenced kit metadata, the ordered plan list, and the store client
// talking to the target holding its secrets.
type environmentContext struct {
	Name     env.Name
	Workdir  string
	Params   config.View
	Kit      kit.Metadata
	KitDir   string
	Features []string
	Plans    []plan.Plan
	Client   *store.Client

	SecretsBase string
	RootCAPath  string
}

// loadEnvironment resolves name under workdir: validates the environment
// file, builds its ancestor chain, merges the parameter view, resolves the
// kit the environment requests, parses and orders its secret plans, and
// constructs a store client against the configured target.
func loadEnvironment(ctx context.Context, workdir, rawName string, settings cliconfig.Settings) (*environmentContext, error) {
	name, err := env.ParseName(rawName)
	if err != nil {
		return nil, err
	}

	if _, err := env.Load(workdir, name); err != nil {
		return nil, err
	}

	ancestors, err := env.BuildAncestorChain(workdir, name, env.ResolveInherits)
	if err != nil {
		return nil, fmt.Errorf("build ancestor chain for %s: %w", name, err)
	}

	files := env.FileList{Ancestors: ancestors}

	merger := config.NewMerger()

	paramDoc, err := merger.Merge(ctx, nonEmpty(files.ParameterFiles()), true)
	if err != nil {
		return nil, fmt.Errorf("merge parameter view for %s: %w", name, err)
	}

	params := config.NewView(paramDoc)

	kitName := params.String("kit.name", "")
	kitVersion := params.String("kit.version", "")

	if kitName == "" {
		return nil, fmt.Errorf("%s does not declare kit.name", name)
	}

	metaPath, err := kitMetadataPath(workdir, kitName, kitVersion)
	if err != nil {
		return nil, err
	}

	meta, err := kit.LoadMetadata(metaPath)
	if err != nil {
		return nil, err
	}

	rootCAPath := params.String("genesis.root_ca_path", settings.RootCAPath)

	secretsBase := params.String("genesis.secrets_path", string(name))

	features := kitFeatures(params)

	plans := plan.Parse(meta, features, plan.Options{RootCAPath: rootCAPath})
	plans = applySecretsBase(plans, secretsBase)

	target := store.Target{
		Name:   "default",
		URL:    settings.StoreURL,
		Verify: !settings.StoreSkipVerify,
	}

	client := store.New(target, settings.StoreToken != "", nil)

	return &environmentContext{
		Name:        name,
		Workdir:     workdir,
		Params:      params,
		Kit:         meta,
		KitDir:      filepath.Dir(metaPath),
		Features:    features,
		Plans:       plans,
		Client:      client,
		SecretsBase: secretsBase,
		RootCAPath:  rootCAPath,
	}, nil
}

// kitFragmentFiles resolves the on-disk paths of every manifest fragment a
// kit declares for the given features (with "base" always first, even when
// it is also listed later in features), relative to kitDir.
func kitFragmentFiles(kitDir string, meta kit.Metadata, features []string) []string {
	ordered := append([]string{"base"}, features...)

	seen := make(map[string]bool, len(ordered))

	var files []string

	for _, feature := range ordered {
		if seen[feature] {
			continue
		}

		seen[feature] = true

		for _, fragment := range meta.Fragments[feature] {
			files = append(files, filepath.Join(kitDir, fragment))
		}
	}

	return files
}

// applySecretsBase rewrites every plan's path (and, for x509 plans, its
// base path and any in-tree signer reference) onto the environment's
// secrets base, leaving externally rooted references (SignedByAbsPath)
// untouched. Each plan is deep-copied first so the parser's original slice
// is never mutated by a caller holding onto it.
func applySecretsBase(plans []plan.Plan, base string) []plan.Plan {
	if base == "" {
		return plans
	}

	out := make([]plan.Plan, len(plans))

	for i, src := range plans {
		var p plan.Plan

		if err := copier.Copy(&p, &src); err != nil {
			p = src
		}

		p.Path = storePath(base, p.Path)

		if p.Kind == plan.KindX509 {
			p.BasePath = storePath(base, p.BasePath)

			if p.SignedBy != "" && !p.SignedByAbsPath {
				p.SignedBy = storePath(base, p.SignedBy)
			}
		}

		out[i] = p
	}

	return out
}

// kitFeatures reads the `kit.features` list declared by an environment's
// merged parameters.
func kitFeatures(params config.View) []string {
	raw, ok := params.Lookup("kit.features")
	if !ok {
		return nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	features := make([]string, 0, len(list))

	for _, v := range list {
		if s, ok := v.(string); ok {
			features = append(features, s)
		}
	}

	return features
}

// kitMetadataPath resolves the on-disk location of a kit's dereferenced
// metadata file; kit packaging and download are out of scope here, so this
// assumes kits are pre-staged under a fixed local cache layout.
func kitMetadataPath(workdir, name, version string) (string, error) {
	if version == "" {
		version = "latest"
	}

	path, err := fsutil.SafeJoin(workdir, ".genesis", "kits", name, version, "kit.yml")
	if err != nil {
		return "", fmt.Errorf("resolve kit metadata path for %s/%s: %w", name, version, err)
	}

	return path, nil
}

// storePath joins a plan's kit-relative path onto the environment's secrets
// base, the prefix every plan/validate/exec operation is scoped under.
func storePath(base, planPath string) string {
	if base == "" {
		return planPath
	}

	return base + "/" + planPath
}

// nonEmpty drops blank entries from a file list (an unset prologue/epilogue
// or cloud-config slot), so the merger is never asked to open "").
func nonEmpty(files []string) []string {
	out := make([]string, 0, len(files))

	for _, f := range files {
		if f != "" {
			out = append(out, f)
		}
	}

	return out
}
