package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genesisproject/genesis/pkg/cliconfig"
	"github.com/genesisproject/genesis/pkg/di"
	"github.com/genesisproject/genesis/pkg/notify"
)

func newCheckCmd(runtime *di.Runtime, settingsViper *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <environment>",
		Short: "Run the kit's check hook and validate the environment's stored secrets.",
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

			hooks := newKitHooks(envCtx.KitDir, envCtx.Kit)

			hookEnv := buildHookEnv(envCtx, hookEnvSettings{
				KitName:         envCtx.Params.String("kit.name", ""),
				KitVersion:      envCtx.Params.String("kit.version", ""),
				StoreURL:        settings.StoreURL,
				StoreSkipVerify: settings.StoreSkipVerify,
				BoshEnvironment: envCtx.Params.String("genesis.bosh_env", ""),
			})

			if stdout, ok, err := hooks.Run(ctx, "check", hookEnv); err != nil {
				return fmt.Errorf("kit check hook: %w", err)
			} else if ok && stdout != "" {
				notify.Infof(out, "%s", stdout)
			}

			results, err := (storeChecker{envCtx: envCtx}).Check(ctx)
			if err != nil {
				return fmt.Errorf("check secrets: %w", err)
			}

			return reportValidation(out, results)
		}),
	}

	return cmd
}
