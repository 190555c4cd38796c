// Package boshconfig implements the Config Fetcher: downloading named BOSH
// director configs into a workdir and mirroring each selection into the
// documented GENESIS_<TYPE>_CONFIG[_<NAME>] hook environment variable.
package boshconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/genesisproject/genesis/pkg/boshdriver"
	"github.com/genesisproject/genesis/pkg/hookenv"
)

// selection is the wildcard name requesting every config of a type.
const selection = "*"

// Fetcher downloads (type, name) director configs into workdir, tracking
// exactly which (type, name) pairs were actually downloaded (a wildcard may
// expand to several).
type Fetcher struct {
	driver  boshdriver.Driver
	workdir string

	downloaded []boshdriver.Config
	files      map[string]string // "type/name" -> file path
}

// NewFetcher constructs a Fetcher that writes config files under workdir.
func NewFetcher(driver boshdriver.Driver, workdir string) *Fetcher {
	return &Fetcher{driver: driver, workdir: workdir, files: make(map[string]string)}
}

// Fetch downloads every config matching (configType, name) — a wildcard
// name requests all configs of configType — writing each to workdir and
// recording it for ConfigFile/EnvVars lookups.
func (f *Fetcher) Fetch(ctx context.Context, configType, name string) error {
	configs, err := f.driver.Configs(ctx, configType, name)
	if err != nil {
		return fmt.Errorf("fetch %s configs (name=%q): %w", configType, name, err)
	}

	for _, c := range configs {
		path := filepath.Join(f.workdir, fmt.Sprintf("%s-%s.yml", c.Type, c.Name))

		if err := os.WriteFile(path, []byte(c.Content), 0o640); err != nil {
			return fmt.Errorf("write config file %s: %w", path, err)
		}

		f.downloaded = append(f.downloaded, c)
		f.files[key(c.Type, c.Name)] = path
	}

	return nil
}

// ConfigFile returns the on-disk path of a previously fetched (type, name)
// config, or "" if it was never fetched.
func (f *Fetcher) ConfigFile(configType, name string) string {
	return f.files[key(configType, name)]
}

// Downloaded returns every (type, name) pair actually downloaded so far, in
// fetch order, including every expansion of a wildcard request.
func (f *Fetcher) Downloaded() []boshdriver.Config {
	return append([]boshdriver.Config(nil), f.downloaded...)
}

// EnvVars returns the GENESIS_<TYPE>_CONFIG[_<NAME>] environment variable
// set for every config downloaded so far, for mirroring into a hook's
// environment.
func (f *Fetcher) EnvVars() map[string]string {
	vars := make(map[string]string, len(f.downloaded))

	for _, c := range f.downloaded {
		vars[hookenv.ConfigVar(c.Type, c.Name)] = f.files[key(c.Type, c.Name)]
	}

	return vars
}

func key(configType, name string) string {
	return configType + "/" + name
}
