// Package reactor implements the deploy pipeline: check, manifest
// generation, pre-deploy hook, reactions, deploy, post-deploy hook and
// reactions, and Exodus publication.
package reactor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/genesisproject/genesis/pkg/boshconfig"
	"github.com/genesisproject/genesis/pkg/boshdriver"
	"github.com/genesisproject/genesis/pkg/exodus"
	"github.com/genesisproject/genesis/pkg/fsutil"
	"github.com/genesisproject/genesis/pkg/plan"
)

// ErrLocalStateMismatch is returned at step 5 when the freshly generated
// manifest diverges from the cached last-deployed one and the caller did
// not confirm proceeding non-interactively.
var ErrLocalStateMismatch = errors.New("deployed state does not match local cache; confirmation required")

// ErrReactionFailed wraps the first non-zero-exit reaction in a phase.
var ErrReactionFailed = errors.New("reaction script failed")

// Hooks are the kit's black-box executables, resolved and invoked with the
// documented hook environment contract already applied by the caller.
type Hooks interface {
	// Run invokes a named hook (check/pre-deploy/post-deploy) if the kit
	// supplies one. ok is false when the kit has no such hook; stdout is
	// only meaningful for pre-deploy.
	Run(ctx context.Context, name string, env map[string]string) (stdout string, ok bool, err error)
}

// Reaction is one `{script|addon, args, var}` entry from
// `genesis.reactions.{pre-deploy,post-deploy}`.
type Reaction struct {
	Kind string // "script" | "addon"
	Ref  string
	Args []string
	Var  string
}

// Reactions runs a configured list of reaction entries against a documented
// environment, in declaration order, aborting the phase on first failure.
type Reactions interface {
	Run(ctx context.Context, reaction Reaction, env map[string]string) error
}

// ManifestSource produces the full unredacted manifest and a redacted copy
// plus a BOSH variables file, and reports whether a cached manifest exists
// for drift comparison.
type ManifestSource interface {
	Render(ctx context.Context, workdir string) (manifest []byte, err error)
	Redact(manifest []byte) (redacted []byte, varsFile []byte, err error)
	Cached(env string) (manifest []byte, found bool, err error)
}

// SecretChecker runs the Plan Validator's checks over the environment's
// secret plans, per step 1.
type SecretChecker interface {
	Check(ctx context.Context) ([]plan.ValidationResult, error)
}

// Options configures one Reactor run.
type Options struct {
	Environment    string
	Type           string
	Workdir        string
	ExodusMount    string
	DryRun         bool
	NonInteractive bool
	UseCreateEnv   bool
	PreDeploy      []Reaction
	PostDeploy     []Reaction
	HookEnv        map[string]string
	DeployFlags    boshdriver.DeployOptions
}

// Reactor orchestrates the eight-step deploy pipeline against its
// collaborators.
type Reactor struct {
	Hooks     Hooks
	Reactions Reactions
	Manifest  ManifestSource
	Checker   SecretChecker
	Driver    boshdriver.Driver
	Configs   *boshconfig.Fetcher
	Publisher exodus.Publisher
}

// Check runs step 1 (kit check hook, then the Plan Validator) standalone,
// without proceeding into manifest rendering or deploy.
func (r *Reactor) Check(ctx context.Context, opts Options) error {
	return r.check(ctx, opts)
}

// Deploy runs the full pipeline for opts. Any DryRun skips steps 7 and 8
// (Exodus publication and the post-deploy hook/reactions).
func (r *Reactor) Deploy(ctx context.Context, opts Options) error {
	if err := r.check(ctx, opts); err != nil {
		return fmt.Errorf("check: %w", err)
	}

	manifest, err := r.Manifest.Render(ctx, opts.Workdir)
	if err != nil {
		return fmt.Errorf("generate manifest: %w", err)
	}

	predeployData, err := r.runPreDeployHook(ctx, opts)
	if err != nil {
		return err
	}

	env := withPredeployData(opts.HookEnv, predeployData)

	if err := r.runReactions(ctx, opts.PreDeploy, env); err != nil {
		return fmt.Errorf("pre-deploy reactions: %w", err)
	}

	redacted, varsFile, err := r.Manifest.Redact(manifest)
	if err != nil {
		return fmt.Errorf("redact manifest: %w", err)
	}

	if err := r.writeWorkdirArtifacts(opts.Workdir, redacted, varsFile); err != nil {
		return err
	}

	if err := r.checkDrift(opts); err != nil {
		return err
	}

	if err := r.invokeDriver(ctx, opts); err != nil {
		deployErr := fmt.Errorf("deploy: %w", err)

		if postErr := r.runPostDeploy(ctx, opts, deployErr); postErr != nil {
			return fmt.Errorf("%w (post-deploy also failed: %s)", deployErr, postErr)
		}

		return deployErr
	}

	if opts.DryRun {
		return nil
	}

	if err := r.persistAndPublish(ctx, opts, manifest, redacted, varsFile); err != nil {
		return err
	}

	return r.runPostDeploy(ctx, opts, nil)
}

func (r *Reactor) check(ctx context.Context, opts Options) error {
	if r.Hooks != nil {
		if _, _, err := r.Hooks.Run(ctx, "check", opts.HookEnv); err != nil {
			return fmt.Errorf("kit check hook: %w", err)
		}
	}

	if r.Checker != nil {
		results, err := r.Checker.Check(ctx)
		if err != nil {
			return fmt.Errorf("secret checks: %w", err)
		}

		for _, res := range results {
			if res.Status == plan.StatusError || res.Status == plan.StatusMissing {
				return fmt.Errorf("secret check failed for %s: %s", res.Plan.Path, res.Message)
			}
		}
	}

	return nil
}

func (r *Reactor) runPreDeployHook(ctx context.Context, opts Options) (string, error) {
	if r.Hooks == nil {
		return "", nil
	}

	stdout, ok, err := r.Hooks.Run(ctx, "pre-deploy", opts.HookEnv)
	if err != nil {
		return "", fmt.Errorf("kit pre-deploy hook: %w", err)
	}

	if !ok {
		return "", nil
	}

	return stdout, nil
}

func withPredeployData(base map[string]string, stdout string) map[string]string {
	env := make(map[string]string, len(base)+1)
	for k, v := range base {
		env[k] = v
	}

	if stdout != "" {
		env["GENESIS_PREDEPLOY_DATAFILE"] = stdout
	}

	return env
}

func (r *Reactor) runReactions(ctx context.Context, reactions []Reaction, env map[string]string) error {
	if r.Reactions == nil {
		return nil
	}

	for _, reaction := range reactions {
		if err := r.Reactions.Run(ctx, reaction, env); err != nil {
			return fmt.Errorf("%w: %s %s: %w", ErrReactionFailed, reaction.Kind, reaction.Ref, err)
		}
	}

	return nil
}

func (r *Reactor) writeWorkdirArtifacts(workdir string, redacted, varsFile []byte) error {
	if _, err := fsutil.TryWriteFile(string(redacted), filepath.Join(workdir, "manifest.yml"), true); err != nil {
		return fmt.Errorf("write redacted manifest: %w", err)
	}

	if _, err := fsutil.TryWriteFile(string(varsFile), filepath.Join(workdir, "manifest.vars"), true); err != nil {
		return fmt.Errorf("write bosh variables file: %w", err)
	}

	return nil
}

func (r *Reactor) checkDrift(opts Options) error {
	cached, found, err := r.Manifest.Cached(opts.Environment)
	if err != nil {
		return fmt.Errorf("read cached manifest: %w", err)
	}

	if !found {
		return nil
	}

	redacted, _, err := r.Manifest.Redact(cached)
	if err != nil {
		return fmt.Errorf("redact cached manifest: %w", err)
	}

	current, err := r.currentRedactedManifest(opts)
	if err != nil {
		return err
	}

	if bytes.Equal(redacted, current) {
		return nil
	}

	if opts.NonInteractive {
		return nil
	}

	return ErrLocalStateMismatch
}

func (r *Reactor) currentRedactedManifest(opts Options) ([]byte, error) {
	path := filepath.Join(opts.Workdir, "manifest.yml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read generated manifest: %w", err)
	}

	return data, nil
}

func (r *Reactor) invokeDriver(ctx context.Context, opts Options) error {
	if r.Driver == nil {
		return nil
	}

	flags := opts.DeployFlags
	flags.ManifestPath = filepath.Join(opts.Workdir, "manifest.yml")
	flags.VarsPath = filepath.Join(opts.Workdir, "manifest.vars")
	flags.DryRun = opts.DryRun

	if opts.UseCreateEnv {
		return r.Driver.CreateEnv(ctx, flags)
	}

	return r.Driver.Deploy(ctx, flags)
}

func (r *Reactor) persistAndPublish(ctx context.Context, opts Options, manifest, redacted, varsFile []byte) error {
	cachePath := filepath.Join(opts.Workdir, ".genesis", "manifests", opts.Environment+".yml")
	if _, err := fsutil.TryWriteFile(string(redacted), cachePath, true); err != nil {
		return fmt.Errorf("cache redacted manifest: %w", err)
	}

	if r.Publisher == nil {
		return nil
	}

	tree, err := parseExodusTree(manifest)
	if err != nil {
		return fmt.Errorf("parse exodus subtree: %w", err)
	}

	values := exodus.Flatten(tree, varResolver(varsFile))

	rec := exodus.Record{
		Mount:        opts.ExodusMount,
		Environment:  opts.Environment,
		Type:         opts.Type,
		Values:       values,
		ManifestSHA1: exodus.ManifestSHA1(manifest),
	}

	if err := exodus.Publish(ctx, r.Publisher, rec); err != nil {
		return fmt.Errorf("publish exodus record: %w", err)
	}

	return nil
}

func (r *Reactor) runPostDeploy(ctx context.Context, opts Options, deployErr error) error {
	env := make(map[string]string, len(opts.HookEnv)+1)
	for k, v := range opts.HookEnv {
		env[k] = v
	}

	env["GENESIS_DEPLOY_RC"] = deployRC(deployErr)

	if r.Hooks != nil {
		if _, _, err := r.Hooks.Run(ctx, "post-deploy", env); err != nil {
			return fmt.Errorf("kit post-deploy hook: %w", err)
		}
	}

	return r.runReactions(ctx, opts.PostDeploy, env)
}

func deployRC(err error) string {
	if err == nil {
		return "0"
	}

	return "1"
}
