// Package boshdriver defines the interface-only BOSH director client: the
// Reactor drives deploys and create-envs through it, but the subprocess
// mechanics of any particular bosh-cli binary are a Non-goal here — callers
// supply a Driver implementation (or ExecDriver, a thin os/exec wrapper
// around the binary located by Probe) the same way the Store Client is injected as an
// interface rather than hard-wired to one binary.
package boshdriver

import (
	"context"
	"errors"
)

// ErrNoCompatibleBinary is returned when none of the probed BOSH CLI
// candidates report a version satisfying the configured minimum.
var ErrNoCompatibleBinary = errors.New("no compatible bosh CLI binary found")

// DeployOptions configures a single deploy/create-env invocation.
type DeployOptions struct {
	ManifestPath string
	VarsPath     string
	Recreate     bool
	DryRun       bool
	Fix          bool
	ExtraFlags   []string
}

// Config is one (type, name) director config, as returned by `configs`.
type Config struct {
	Type    string
	Name    string
	Content string
}

// Stemcell is one entry from the director's stemcell listing.
type Stemcell struct {
	Name    string
	OS      string
	Version string
}

// Driver is the BOSH director client surface the Reactor depends on.
type Driver interface {
	// Deploy runs `deploy` against an existing director.
	Deploy(ctx context.Context, opts DeployOptions) error
	// CreateEnv runs `create-env` for a self-contained (director-less) deployment.
	CreateEnv(ctx context.Context, opts DeployOptions) error
	// Configs lists the director's configs, optionally filtered by type/name
	// (name == "*" requests all configs of type).
	Configs(ctx context.Context, configType, name string) ([]Config, error)
	// Stemcells lists stemcells known to the director.
	Stemcells(ctx context.Context) ([]Stemcell, error)
	// Version reports the bosh CLI binary's reported version.
	Version(ctx context.Context) (string, error)
}
