package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisproject/genesis/pkg/env"
	"github.com/genesisproject/genesis/pkg/hookenv"
	"github.com/genesisproject/genesis/pkg/kit"
)

func TestBoolString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1", boolString(true))
	assert.Equal(t, "0", boolString(false))
}

func TestBuildHookEnv_OmitsBoshVarsWithoutEnvironment(t *testing.T) {
	t.Parallel()

	envCtx := &environmentContext{
		Name:        env.Name("myenv"),
		Workdir:     "/envs/myenv",
		SecretsBase: "secret/myenv",
		RootCAPath:  "/etc/ssl/ca.pem",
	}

	out := buildHookEnv(envCtx, hookEnvSettings{
		KitName:    "mykit",
		KitVersion: "1.2.3",
		StoreURL:   "https://vault.example.com",
	})

	assert.Equal(t, "/envs/myenv", out[hookenv.Root])
	assert.Equal(t, "myenv", out[hookenv.Environment])
	assert.Equal(t, "bosh", out[hookenv.Type])
	assert.Equal(t, "mykit", out[hookenv.KitName])
	assert.Equal(t, "1.2.3", out[hookenv.KitVersion])
	assert.Equal(t, "secret/myenv", out[hookenv.SecretsSlug])
	assert.Equal(t, "/etc/ssl/ca.pem", out[hookenv.RootCAPath])
	assert.Equal(t, "https://vault.example.com", out[hookenv.TargetVault])
	assert.Equal(t, "1", out[hookenv.VerifyVault])
	assert.NotContains(t, out, hookenv.BoshAlias)
	assert.NotContains(t, out, hookenv.BoshEnvironment)
}

func TestBuildHookEnv_IncludesBoshAliasWhenSet(t *testing.T) {
	t.Parallel()

	envCtx := &environmentContext{Name: env.Name("myenv")}

	out := buildHookEnv(envCtx, hookEnvSettings{
		StoreSkipVerify: true,
		BoshEnvironment: "myenv-bosh",
	})

	assert.Equal(t, "myenv-bosh", out[hookenv.BoshAlias])
	assert.Equal(t, "myenv-bosh", out[hookenv.BoshEnvironment])
	assert.Equal(t, "0", out[hookenv.VerifyVault])
}

func TestKitHooks_RunsDeclaredHook(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "check.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho hello\n"), 0o755))

	hooks := newKitHooks(dir, kit.Metadata{Hooks: map[string]string{"check": "check.sh"}})

	out, ran, err := hooks.Run(context.Background(), "check", nil)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "hello\n", out)
}

func TestKitHooks_UndeclaredHookIsNoop(t *testing.T) {
	t.Parallel()

	hooks := newKitHooks("/kits/mykit", kit.Metadata{})

	out, ran, err := hooks.Run(context.Background(), "pre-start", nil)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, out)
}
