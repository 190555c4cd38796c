package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/genesisproject/genesis/pkg/reactor"
)

// scriptReactions adapts the {script, addon} reaction variants to
// reactor.Reactions: both resolve to an executable path and run with the
// same subprocess/environment shape as a kit hook, differing only in which
// directory the reference resolves against.
type scriptReactions struct {
	kitDir  string
	workdir string
}

func (s scriptReactions) Run(ctx context.Context, reaction reactor.Reaction, env map[string]string) error {
	path, err := s.resolve(reaction)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, path, reaction.Args...) //nolint:gosec // path resolved from a declared kit/environment reaction entry

	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("run %s %s: %w: %s", reaction.Kind, reaction.Ref, err, stderr.String())
	}

	if reaction.Var != "" {
		os.Setenv(reaction.Var, string(stdout)) //nolint:errcheck // best-effort propagation into the calling process's own environment
	}

	return nil
}

func (s scriptReactions) resolve(reaction reactor.Reaction) (string, error) {
	switch reaction.Kind {
	case "script":
		return filepath.Join(s.kitDir, reaction.Ref), nil
	case "addon":
		return filepath.Join(s.workdir, ".genesis", "addons", reaction.Ref), nil
	default:
		return "", fmt.Errorf("unknown reaction type %q", reaction.Kind)
	}
}
