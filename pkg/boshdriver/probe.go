package boshdriver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// candidateBinaries are probed in order; among those reporting a version
// satisfying the configured minimum, the highest version is chosen, and on
// equal versions the earlier candidate wins.
var candidateBinaries = []string{"bosh", "bosh2", "boshv2"}

var versionLinePattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// ProbeResult names a discovered candidate and its reported version.
type ProbeResult struct {
	Binary  string
	Version *semver.Version
}

// Probe runs `<binary> --version` against every candidate and returns the
// highest-versioned one satisfying minVersion.
func Probe(ctx context.Context, minVersion string) (ProbeResult, error) {
	min, err := semver.NewVersion(minVersion)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("parse minimum version %q: %w", minVersion, err)
	}

	var best ProbeResult

	for _, bin := range candidateBinaries {
		v, err := probeOne(ctx, bin)
		if err != nil {
			continue
		}

		if v.Compare(min) < 0 {
			continue
		}

		if best.Version == nil || v.Compare(best.Version) > 0 {
			best = ProbeResult{Binary: bin, Version: v}
		}
	}

	if best.Version == nil {
		return ProbeResult{}, ErrNoCompatibleBinary
	}

	return best, nil
}

func probeOne(ctx context.Context, binary string) (*semver.Version, error) {
	cmd := exec.CommandContext(ctx, binary, "--version") //nolint:gosec // binary drawn from a fixed candidate list

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s --version: %w", binary, err)
	}

	m := versionLinePattern.FindString(out.String())
	if m == "" {
		return nil, fmt.Errorf("no version string found in %s --version output", binary)
	}

	return semver.NewVersion(m)
}
