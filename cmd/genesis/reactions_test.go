package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisproject/genesis/pkg/reactor"
)

func TestScriptReactions_Resolve(t *testing.T) {
	t.Parallel()

	s := scriptReactions{kitDir: "/kits/mykit", workdir: "/envs/myenv"}

	script, err := s.resolve(reactor.Reaction{Kind: "script", Ref: "hooks/notify.sh"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/kits/mykit", "hooks/notify.sh"), script)

	addon, err := s.resolve(reactor.Reaction{Kind: "addon", Ref: "slack.sh"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/envs/myenv", ".genesis", "addons", "slack.sh"), addon)

	_, err = s.resolve(reactor.Reaction{Kind: "bogus"})
	require.Error(t, err)
}

func TestScriptReactions_RunSetsVarFromStdout(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "emit.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf 'v1.2.3'\n"), 0o755))

	s := scriptReactions{kitDir: dir}

	t.Setenv("REACTION_OUT", "")

	err := s.Run(context.Background(), reactor.Reaction{Kind: "script", Ref: "emit.sh", Var: "REACTION_OUT"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", os.Getenv("REACTION_OUT"))
}

func TestScriptReactions_RunUnknownKindErrors(t *testing.T) {
	t.Parallel()

	s := scriptReactions{}

	err := s.Run(context.Background(), reactor.Reaction{Kind: "bogus"}, nil)
	require.Error(t, err)
}
