// Package cliconfig loads the CLI's own operating settings (as opposed to
// an environment's deployment parameters, which live under pkg/config) —
// target vault, workdir, non-interactive mode, root CA path — from flags,
// a `.genesis.yml` dotfile, and the environment, the same layered way the
// teacher's config manager initializes Viper for its own CLI settings.
package cliconfig

import (
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fsnotify/fsnotify"

	"github.com/genesisproject/genesis/pkg/fsutil"
)

// Settings are the CLI's own operating parameters, layered from lowest to
// highest precedence: defaults, `.genesis.yml`, environment variables (
// `GENESIS_CLI_*`), command-line flags.
type Settings struct {
	Workdir        string `mapstructure:"workdir"`
	RootCAPath     string `mapstructure:"root_ca_path"`
	NonInteractive bool   `mapstructure:"non_interactive"`
	Verbose        bool   `mapstructure:"verbose"`

	StoreURL        string `mapstructure:"store_url"`
	StoreToken      string `mapstructure:"store_token"`
	StoreSkipVerify bool   `mapstructure:"store_skip_verify"`
}

// NewViper constructs a Viper instance configured to read `.genesis.yml`
// from the current directory and home directory, and `GENESIS_CLI_*`
// environment variables.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(".genesis")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix("GENESIS_CLI")
	v.AutomaticEnv()

	v.SetDefault("workdir", ".")
	v.SetDefault("non_interactive", false)

	return v
}

// BindFlags binds a command's persistent flags into v, so flags take
// precedence over file/env values once parsed.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error

	// Flags are hyphenated (root-ca-path); Settings keys use underscores.
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}

		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			bindErr = fmt.Errorf("bind cli flag %s: %w", f.Name, err)
		}
	})

	return bindErr
}

// Load reads `.genesis.yml` if present (a missing file is not an error) and
// decodes the layered result into Settings.
func Load(v *viper.Viper) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound { //nolint:errorlint // viper's own sentinel type
			return Settings{}, fmt.Errorf("read cli config: %w", err)
		}
	}

	var s Settings

	decodeHook := mapstructure.ComposeDecodeHookFunc(mapstructure.StringToTimeDurationHookFunc())

	if err := v.Unmarshal(&s, viper.DecodeHook(decodeHook)); err != nil {
		return Settings{}, fmt.Errorf("decode cli config: %w", err)
	}

	if err := expandPaths(&s); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// expandPaths resolves ~/ and relative workdir/root-CA paths to absolute
// ones, so a `.genesis.yml` or GENESIS_CLI_* value written relative to the
// user's home directory behaves the same regardless of the CLI's cwd.
func expandPaths(s *Settings) error {
	workdir, err := fsutil.ExpandHomePath(s.Workdir)
	if err != nil {
		return fmt.Errorf("expand workdir: %w", err)
	}

	s.Workdir = workdir

	if s.RootCAPath != "" {
		rootCAPath, err := fsutil.ExpandHomePath(s.RootCAPath)
		if err != nil {
			return fmt.Errorf("expand root ca path: %w", err)
		}

		s.RootCAPath = rootCAPath
	}

	return nil
}

// WatchAndReload invokes onChange every time the active config file changes
// on disk, decoding the new Settings value.
func WatchAndReload(v *viper.Viper, onChange func(Settings)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		var s Settings
		if err := v.Unmarshal(&s); err == nil && expandPaths(&s) == nil {
			onChange(s)
		}
	})
	v.WatchConfig()
}
