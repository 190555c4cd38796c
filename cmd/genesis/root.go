// Package main is the entry point for the Genesis CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genesisproject/genesis/internal/buildmeta"
	"github.com/genesisproject/genesis/pkg/cliconfig"
	"github.com/genesisproject/genesis/pkg/di"
)

// NewRootCmd creates and returns the root command with version info and
// every Genesis subcommand wired against a fresh DI runtime.
func NewRootCmd() *cobra.Command {
	runtime := di.NewRuntime()
	settings := cliconfig.NewViper()

	cmd := &cobra.Command{
		Use:          "genesis",
		Short:        "Compose environments, manage their secrets, and deploy them.",
		Long:         "Genesis materializes a hierarchy of environment specifications into a rendered deployment manifest, manages the lifecycle of that environment's secrets, and drives the downstream deployment engine.",
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (built %s from %s)", buildmeta.Version, buildmeta.Date, buildmeta.Commit)

	cmd.PersistentFlags().String("workdir", ".", "environment root directory")
	cmd.PersistentFlags().String("root-ca-path", "", "root CA path used to sign otherwise-unsigned x509 plans")
	cmd.PersistentFlags().Bool("non-interactive", false, "never prompt; fail instead of waiting on a controlling terminal")
	cmd.PersistentFlags().String("store-url", "", "credentials store target URL")
	cmd.PersistentFlags().String("store-token", "", "credentials store auth token")
	cmd.PersistentFlags().Bool("store-skip-verify", false, "skip TLS verification against the credentials store")

	if err := cliconfig.BindFlags(settings, cmd.PersistentFlags()); err != nil {
		panic(err)
	}

	cmd.AddCommand(newCheckCmd(runtime, settings))
	cmd.AddCommand(newDeployCmd(runtime, settings))
	cmd.AddCommand(newSecretsCmd(runtime, settings))
	cmd.AddCommand(newTargetsCmd(runtime, settings))

	return cmd
}

// Execute runs cmd and reports any error on its error stream.
func Execute(cmd *cobra.Command) error {
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
