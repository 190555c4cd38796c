package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/genesisproject/genesis/pkg/hookenv"
	"github.com/genesisproject/genesis/pkg/kit"
)

// kitHooks adapts a kit's hooks map (name -> script path relative to the kit
// directory) to reactor.Hooks, shelling out exactly the way the BOSH driver's
// ExecDriver does for its own subprocess calls.
type kitHooks struct {
	kitDir string
	hooks  map[string]string
}

func newKitHooks(kitDir string, meta kit.Metadata) kitHooks {
	return kitHooks{kitDir: kitDir, hooks: meta.Hooks}
}

func (h kitHooks) Run(ctx context.Context, name string, env map[string]string) (string, bool, error) {
	rel, ok := h.hooks[name]
	if !ok {
		return "", false, nil
	}

	script := filepath.Join(h.kitDir, rel)

	cmd := exec.CommandContext(ctx, script) //nolint:gosec // script path comes from the kit's own declared hooks map

	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", true, fmt.Errorf("run %s hook %s: %w: %s", name, script, err, stderr.String())
	}

	return stdout.String(), true, nil
}

// buildHookEnv assembles the GENESIS_*/BOSH_*/CREDHUB_* environment every
// hook and reaction script receives, per the documented hook environment
// contract.
func buildHookEnv(envCtx *environmentContext, settings hookEnvSettings) map[string]string {
	env := map[string]string{
		hookenv.Root:        envCtx.Workdir,
		hookenv.Environment: string(envCtx.Name),
		hookenv.Type:        "bosh",
		hookenv.KitName:     settings.KitName,
		hookenv.KitVersion:  settings.KitVersion,
		hookenv.SecretsSlug: envCtx.SecretsBase,
		hookenv.RootCAPath:  envCtx.RootCAPath,
		hookenv.TargetVault: settings.StoreURL,
		hookenv.VerifyVault: boolString(!settings.StoreSkipVerify),
	}

	if settings.BoshEnvironment != "" {
		env[hookenv.BoshAlias] = settings.BoshEnvironment
		env[hookenv.BoshEnvironment] = settings.BoshEnvironment
	}

	return env
}

// hookEnvSettings is the subset of resolved settings/params buildHookEnv
// needs, kept separate from cliconfig.Settings so callers can supply
// per-environment overrides (kit name/version, BOSH env alias) without
// reaching back into viper.
type hookEnvSettings struct {
	KitName         string
	KitVersion      string
	StoreURL        string
	StoreSkipVerify bool
	BoshEnvironment string
}

func boolString(b bool) string {
	if b {
		return "1"
	}

	return "0"
}
