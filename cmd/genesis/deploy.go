package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genesisproject/genesis/pkg/boshconfig"
	"github.com/genesisproject/genesis/pkg/boshdriver"
	"github.com/genesisproject/genesis/pkg/cliconfig"
	"github.com/genesisproject/genesis/pkg/config"
	"github.com/genesisproject/genesis/pkg/di"
	"github.com/genesisproject/genesis/pkg/env"
	"github.com/genesisproject/genesis/pkg/notify"
	"github.com/genesisproject/genesis/pkg/reactor"
)

func newDeployCmd(runtime *di.Runtime, settingsViper *viper.Viper) *cobra.Command {
	var dryRun, recreate, fix bool

	cmd := &cobra.Command{
		Use:   "deploy <environment>",
		Short: "Run the full deploy pipeline: check, manifest, hooks, reactions, deploy, Exodus.",
		Args:  cobra.ExactArgs(1),
		RunE: di.RunEWithRuntime(runtime, func(cmd *cobra.Command, _ di.Injector) error {
			settings, err := cliconfig.Load(settingsViper)
			if err != nil {
				return err
			}

			environment := cmd.Flags().Args()[0]

			ctx := cmd.Context()

			envCtx, err := loadEnvironment(ctx, settings.Workdir, environment, settings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			r, opts, err := buildReactor(ctx, envCtx, settings, dryRun, recreate, fix)
			if err != nil {
				return err
			}

			runID := uuid.New().String()

			notify.Titlef(out, "", "deploying %s (run %s)", environment, runID)

			if err := r.Deploy(ctx, opts); err != nil {
				return fmt.Errorf("deploy %s (run %s): %w", environment, runID, err)
			}

			notify.Successf(out, "deployed %s (run %s)", environment, runID)

			return nil
		}),
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render and validate the manifest without invoking the BOSH director")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "recreate every instance on deploy")
	cmd.Flags().BoolVar(&fix, "fix", false, "ask the BOSH director to fix unresponsive instances")

	return cmd
}

// buildReactor wires a Reactor and its Options from an already-resolved
// environmentContext: the kit's hooks, the merged-manifest adapter, the
// Plan Validator checker, a probed BOSH driver, the Config Fetcher, and the
// store client as the Exodus Record's publisher.
func buildReactor(ctx context.Context, envCtx *environmentContext, settings cliconfig.Settings, dryRun, recreate, fix bool) (*reactor.Reactor, reactor.Options, error) {
	useCreateEnv := envCtx.Params.Bool("genesis.use_create_env", false)
	boshEnv := envCtx.Params.String("genesis.bosh_env", "")

	var driver boshdriver.Driver

	if !useCreateEnv && boshEnv != "" {
		probed, err := boshdriver.Probe(ctx, envCtx.Params.String("genesis.min_version", "0.0.0"))
		if err != nil {
			return nil, reactor.Options{}, fmt.Errorf("probe bosh CLI: %w", err)
		}

		driver = boshdriver.NewExecDriver(probed.Binary, boshEnv)
	}

	hookEnv := buildHookEnv(envCtx, hookEnvSettings{
		KitName:         envCtx.Params.String("kit.name", ""),
		KitVersion:      envCtx.Params.String("kit.version", ""),
		StoreURL:        settings.StoreURL,
		StoreSkipVerify: settings.StoreSkipVerify,
		BoshEnvironment: boshEnv,
	})

	var fetcher *boshconfig.Fetcher
	if driver != nil {
		fetcher = boshconfig.NewFetcher(driver, envCtx.Workdir)

		for _, rc := range envCtx.Kit.RequiredConfigs {
			if err := fetcher.Fetch(ctx, rc.Type, rc.Name); err != nil {
				return nil, reactor.Options{}, fmt.Errorf("fetch required config %s/%s: %w", rc.Type, rc.Name, err)
			}
		}

		for k, v := range fetcher.EnvVars() {
			hookEnv[k] = v
		}
	}

	ancestors, err := env.BuildAncestorChain(envCtx.Workdir, envCtx.Name, env.ResolveInherits)
	if err != nil {
		return nil, reactor.Options{}, fmt.Errorf("rebuild ancestor chain for manifest rendering: %w", err)
	}

	manifest := &mergedManifestSource{
		merger: config.NewMerger(),
		files: env.FileList{
			Ancestors:    ancestors,
			KitFragments: kitFragmentFiles(envCtx.KitDir, envCtx.Kit, envCtx.Features),
		},
		workdir: envCtx.Workdir,
	}

	r := &reactor.Reactor{
		Hooks:     newKitHooks(envCtx.KitDir, envCtx.Kit),
		Reactions: scriptReactions{kitDir: envCtx.KitDir, workdir: envCtx.Workdir},
		Manifest:  manifest,
		Checker:   storeChecker{envCtx: envCtx},
		Driver:    driver,
		Configs:   fetcher,
		Publisher: envCtx.Client,
	}

	opts := reactor.Options{
		Environment:    string(envCtx.Name),
		Type:           envCtx.Params.String("kit.name", ""),
		Workdir:        envCtx.Workdir,
		ExodusMount:    envCtx.Params.String("genesis.exodus_mount", "exodus"),
		DryRun:         dryRun,
		NonInteractive: settings.NonInteractive,
		UseCreateEnv:   useCreateEnv,
		PreDeploy:      parseReactions(envCtx.Params, "genesis.reactions.pre-deploy"),
		PostDeploy:     parseReactions(envCtx.Params, "genesis.reactions.post-deploy"),
		HookEnv:        hookEnv,
		DeployFlags: boshdriver.DeployOptions{
			Recreate: recreate,
			Fix:      fix,
		},
	}

	return r, opts, nil
}

// parseReactions reads the genesis.reactions.{pre-deploy,post-deploy} list
// declared by an environment's merged parameters into reactor.Reaction
// values.
func parseReactions(params config.View, path string) []reactor.Reaction {
	raw, ok := params.Lookup(path)
	if !ok {
		return nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	reactions := make([]reactor.Reaction, 0, len(list))

	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		reactions = append(reactions, reactionFromMap(m))
	}

	return reactions
}

func reactionFromMap(m map[string]any) reactor.Reaction {
	r := reactor.Reaction{}

	if v, ok := m["script"].(string); ok {
		r.Kind = "script"
		r.Ref = v
	} else if v, ok := m["addon"].(string); ok {
		r.Kind = "addon"
		r.Ref = v
	}

	if v, ok := m["var"].(string); ok {
		r.Var = v
	}

	if raw, ok := m["args"].([]any); ok {
		for _, a := range raw {
			if s, ok := a.(string); ok {
				r.Args = append(r.Args, s)
			}
		}
	}

	return r
}
