package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genesisproject/genesis/pkg/cliconfig"
	"github.com/genesisproject/genesis/pkg/di"
	"github.com/genesisproject/genesis/pkg/notify"
	"github.com/genesisproject/genesis/pkg/store"
	"github.com/genesisproject/genesis/pkg/store/target"
)

func newTargetsCmd(runtime *di.Runtime, settingsViper *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List the credentials-store targets known to this workdir.",
		Args:  cobra.NoArgs,
		RunE: di.RunEWithRuntime(runtime, func(cmd *cobra.Command, _ di.Injector) error {
			settings, err := cliconfig.Load(settingsViper)
			if err != nil {
				return err
			}

			path := filepath.Join(settings.Workdir, ".genesis", "targets.yml")

			registry, err := target.LoadFile(path)
			if err != nil {
				return fmt.Errorf("load targets: %w", err)
			}

			out := cmd.OutOrStdout()

			colliding := make(map[string]struct{})
			for _, url := range registry.CollidingURLs() {
				colliding[url] = struct{}{}
			}

			for _, t := range registry.Filter(store.Target{}) {
				if _, collides := colliding[t.URL]; collides {
					notify.Warningf(out, "%s -> %s (shared URL, resolve by name)", t.Name, t.URL)

					continue
				}

				notify.Infof(out, "%s -> %s", t.Name, t.URL)
			}

			return nil
		}),
	}

	return cmd
}
