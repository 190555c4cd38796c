package reactor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisproject/genesis/pkg/boshdriver"
	"github.com/genesisproject/genesis/pkg/plan"
	"github.com/genesisproject/genesis/pkg/reactor"
)

type fakeHooks struct {
	ran []string
}

func (f *fakeHooks) Run(_ context.Context, name string, _ map[string]string) (string, bool, error) {
	f.ran = append(f.ran, name)

	return "", false, nil
}

type fakeReactions struct {
	ran []string
}

func (f *fakeReactions) Run(_ context.Context, reaction reactor.Reaction, _ map[string]string) error {
	f.ran = append(f.ran, reaction.Ref)

	return nil
}

type fakeManifest struct {
	manifest []byte
}

func (f *fakeManifest) Render(context.Context, string) ([]byte, error) {
	return f.manifest, nil
}

func (f *fakeManifest) Redact(manifest []byte) ([]byte, []byte, error) {
	return manifest, []byte("db_password: secret\n"), nil
}

func (f *fakeManifest) Cached(string) ([]byte, bool, error) {
	return nil, false, nil
}

type fakeDriver struct {
	deployed bool
}

func (f *fakeDriver) Deploy(context.Context, boshdriver.DeployOptions) error {
	f.deployed = true

	return nil
}

func (f *fakeDriver) CreateEnv(context.Context, boshdriver.DeployOptions) error { return nil }

type failingDriver struct {
	err error
}

func (f *failingDriver) Deploy(context.Context, boshdriver.DeployOptions) error { return f.err }

func (f *failingDriver) CreateEnv(context.Context, boshdriver.DeployOptions) error { return f.err }

func (f *failingDriver) Configs(context.Context, string, string) ([]boshdriver.Config, error) {
	return nil, nil
}

func (f *failingDriver) Stemcells(context.Context) ([]boshdriver.Stemcell, error) { return nil, nil }
func (f *failingDriver) Version(context.Context) (string, error)                 { return "v1", nil }

func (f *fakeDriver) Configs(context.Context, string, string) ([]boshdriver.Config, error) {
	return nil, nil
}

func (f *fakeDriver) Stemcells(context.Context) ([]boshdriver.Stemcell, error) { return nil, nil }
func (f *fakeDriver) Version(context.Context) (string, error)                 { return "v1", nil }

type fakePublisher struct {
	published map[string]string
}

func (f *fakePublisher) Rm(context.Context, string) error { return nil }

func (f *fakePublisher) SetAll(_ context.Context, _ string, values map[string]string) error {
	f.published = values

	return nil
}

func TestReactor_Deploy_RunsFullPipeline(t *testing.T) {
	t.Parallel()

	workdir := t.TempDir()

	hooks := &fakeHooks{}
	reactions := &fakeReactions{}
	driver := &fakeDriver{}
	publisher := &fakePublisher{}

	r := &reactor.Reactor{
		Hooks:     hooks,
		Reactions: reactions,
		Manifest:  &fakeManifest{manifest: []byte("exodus:\n  version: 1\n")},
		Driver:    driver,
		Publisher: publisher,
	}

	opts := reactor.Options{
		Environment: "prod-east",
		Type:        "my-kit",
		Workdir:     workdir,
		ExodusMount: "secret/exodus",
		PreDeploy:   []reactor.Reaction{{Kind: "script", Ref: "notify-pre"}},
		PostDeploy:  []reactor.Reaction{{Kind: "script", Ref: "notify-post"}},
	}

	err := r.Deploy(context.Background(), opts)
	require.NoError(t, err)

	assert.True(t, driver.deployed)
	assert.Contains(t, hooks.ran, "check")
	assert.Contains(t, hooks.ran, "pre-deploy")
	assert.Contains(t, hooks.ran, "post-deploy")
	assert.Contains(t, reactions.ran, "notify-pre")
	assert.Contains(t, reactions.ran, "notify-post")
	assert.Equal(t, "1", publisher.published["version"])
	assert.NotEmpty(t, publisher.published["manifest_sha1"])

	cached, err := os.ReadFile(filepath.Join(workdir, ".genesis", "manifests", "prod-east.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(cached), "exodus")
}

func TestReactor_Deploy_DryRunSkipsExodusAndPostDeploy(t *testing.T) {
	t.Parallel()

	workdir := t.TempDir()

	hooks := &fakeHooks{}
	driver := &fakeDriver{}
	publisher := &fakePublisher{}

	r := &reactor.Reactor{
		Hooks:     hooks,
		Manifest:  &fakeManifest{manifest: []byte("exodus:\n  version: 1\n")},
		Driver:    driver,
		Publisher: publisher,
	}

	opts := reactor.Options{Environment: "prod-east", Workdir: workdir, DryRun: true}

	err := r.Deploy(context.Background(), opts)
	require.NoError(t, err)

	assert.NotContains(t, hooks.ran, "post-deploy")
	assert.Nil(t, publisher.published)
}

func TestReactor_Deploy_AbortsOnFailedSecretCheck(t *testing.T) {
	t.Parallel()

	checker := checkerFunc(func(context.Context) ([]plan.ValidationResult, error) {
		return []plan.ValidationResult{{Status: plan.StatusMissing, Message: "missing cert"}}, nil
	})

	r := &reactor.Reactor{
		Manifest: &fakeManifest{manifest: []byte("{}")},
		Checker:  checker,
	}

	err := r.Deploy(context.Background(), reactor.Options{Workdir: t.TempDir()})
	require.Error(t, err)
}

func TestReactor_Deploy_DriverFailureStillRunsPostDeploy(t *testing.T) {
	t.Parallel()

	workdir := t.TempDir()

	hooks := &fakeHooks{}
	reactions := &fakeReactions{}
	publisher := &fakePublisher{}
	driverErr := assert.AnError

	r := &reactor.Reactor{
		Hooks:     hooks,
		Reactions: reactions,
		Manifest:  &fakeManifest{manifest: []byte("exodus:\n  version: 1\n")},
		Driver:    &failingDriver{err: driverErr},
		Publisher: publisher,
	}

	opts := reactor.Options{
		Environment: "prod-east",
		Workdir:     workdir,
		PostDeploy:  []reactor.Reaction{{Kind: "script", Ref: "notify-post"}},
	}

	err := r.Deploy(context.Background(), opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)

	assert.Contains(t, hooks.ran, "post-deploy", "post-deploy hook must still run on a deploy failure")
	assert.Contains(t, reactions.ran, "notify-post")
	assert.Nil(t, publisher.published, "exodus publication must be skipped on a deploy failure")

	_, statErr := os.Stat(filepath.Join(workdir, ".genesis", "manifests", "prod-east.yml"))
	assert.True(t, os.IsNotExist(statErr), "manifest cache must not be written on a deploy failure")
}

type checkerFunc func(context.Context) ([]plan.ValidationResult, error)

func (f checkerFunc) Check(ctx context.Context) ([]plan.ValidationResult, error) { return f(ctx) }
