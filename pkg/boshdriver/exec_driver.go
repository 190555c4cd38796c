package boshdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// ExecDriver is the production Driver, shelling out to a probed bosh CLI
// binary — the same thin os/exec.CommandContext shape the Store Client
// uses for its own subprocess.
type ExecDriver struct {
	binary string
	env    func() string
}

// NewExecDriver constructs an ExecDriver bound to a resolved binary name
// (typically the Binary field of a Probe result) and the BOSH environment
// alias/URL it targets.
func NewExecDriver(binary, environment string) *ExecDriver {
	return &ExecDriver{binary: binary, env: func() string { return environment }}
}

func (d *ExecDriver) Deploy(ctx context.Context, opts DeployOptions) error {
	args := []string{"-e", d.env(), "deploy", opts.ManifestPath, "--vars-file", opts.VarsPath}
	args = append(args, deployFlags(opts)...)

	_, err := d.run(ctx, args)

	return err
}

func (d *ExecDriver) CreateEnv(ctx context.Context, opts DeployOptions) error {
	args := []string{"create-env", opts.ManifestPath, "--vars-file", opts.VarsPath}
	args = append(args, deployFlags(opts)...)

	_, err := d.run(ctx, args)

	return err
}

func deployFlags(opts DeployOptions) []string {
	var flags []string

	if opts.Recreate {
		flags = append(flags, "--recreate")
	}

	if opts.DryRun {
		flags = append(flags, "--dry-run")
	}

	if opts.Fix {
		flags = append(flags, "--fix")
	}

	return append(flags, opts.ExtraFlags...)
}

func (d *ExecDriver) Configs(ctx context.Context, configType, name string) ([]Config, error) {
	args := []string{"-e", d.env(), "configs", "--type", configType}
	if name != "" && name != "*" {
		args = append(args, "--name", name)
	}

	args = append(args, "--json")

	out, err := d.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Tables []struct {
			Rows []map[string]string `json:"Rows"`
		} `json:"Tables"`
	}

	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse configs output: %w", err)
	}

	var configs []Config

	for _, table := range parsed.Tables {
		for _, row := range table.Rows {
			configs = append(configs, Config{Type: row["type"], Name: row["name"], Content: row["content"]})
		}
	}

	return configs, nil
}

func (d *ExecDriver) Stemcells(ctx context.Context) ([]Stemcell, error) {
	out, err := d.run(ctx, []string{"-e", d.env(), "stemcells", "--json"})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Tables []struct {
			Rows []map[string]string `json:"Rows"`
		} `json:"Tables"`
	}

	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse stemcells output: %w", err)
	}

	var stemcells []Stemcell

	for _, table := range parsed.Tables {
		for _, row := range table.Rows {
			stemcells = append(stemcells, Stemcell{Name: row["name"], OS: row["os"], Version: row["version"]})
		}
	}

	return stemcells, nil
}

func (d *ExecDriver) Version(ctx context.Context) (string, error) {
	out, err := d.run(ctx, []string{"--version"})
	if err != nil {
		return "", err
	}

	return string(out), nil
}

func (d *ExecDriver) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, d.binary, args...) //nolint:gosec // binary resolved via Probe, args constructed internally

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s %v: %w: %s", d.binary, args, err, stderr.String())
	}

	return out.Bytes(), nil
}
