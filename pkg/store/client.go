package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Status is the derived authentication/reachability state of a target.
type Status string

// Status values, in the order the status derivation checks them.
const (
	StatusUnreachable    Status = "unreachable"
	StatusUnauthenticated Status = "unauthenticated"
	StatusSealed         Status = "sealed"
	StatusUninitialized  Status = "uninitialized"
	StatusOK             Status = "ok"
)

// sealedExitCode is the subprocess exit code the store binary uses to
// signal a sealed vault, per the external interfaces contract.
const sealedExitCode = 2

// probeTimeout bounds the TCP reachability probe; it is not a retry budget,
// just a ceiling on an otherwise unbounded dial.
const probeTimeout = 3 * time.Second

// binaryName is the external secrets-store CLI this client shells out to.
const binaryName = "safe"

// handshakePath is the distinguished path probed to distinguish "sealed" from
// "uninitialized" once the subprocess status call itself is inconclusive.
const handshakePath = "secret/handshake"

// Client is a single authenticated session against a credentials store,
// constructed from a Target. Every operation is a blocking subprocess
// invocation over the store binary, following the same thin os/exec wrapper
// shape used throughout the store/BOSH-driver clients.
type Client struct {
	target Target
	token  string
	runner CommandRunner
}

// CommandRunner executes the store binary and returns its stdout, its
// stderr and its exit status; production code uses execRunner, tests
// substitute a scripted fake.
type CommandRunner interface {
	Run(ctx context.Context, env []string, args ...string) (stdout string, stderr string, exitCode int, err error)
}

// New constructs a Client for target. hasToken indicates whether a store
// auth token is already present in the caller's environment; Client does not
// read the environment itself so tests can construct deterministic state.
func New(target Target, hasToken bool, runner CommandRunner) *Client {
	token := ""
	if hasToken {
		token = "present"
	}

	if runner == nil {
		runner = execRunner{}
	}

	return &Client{target: target, token: token, runner: runner}
}

// baseEnv always overrides the target-selection env var and clears any
// verbose/debug env that would disrupt output parsing.
func (c *Client) baseEnv() []string {
	return []string{
		"SAFE_TARGET=" + c.target.URL,
		"SAFE_SKIP_VERIFY=" + boolEnv(!c.target.Verify),
		"DEBUG=",
		"SAFE_DEBUG=",
	}
}

func boolEnv(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

// Get reads path, optionally scoped to a single key. A missing path returns
// an empty map rather than an error.
func (c *Client) Get(ctx context.Context, path, key string) (map[string]string, error) {
	args := []string{"get", "--json", path}

	stdout, stderr, code, err := c.runner.Run(ctx, c.baseEnv(), args...)
	if err != nil {
		return nil, fmt.Errorf("safe get %s: %w", path, err)
	}

	if code != 0 {
		if strings.Contains(stderr, "not found") {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("safe get %s: %s", path, stderr)
	}

	var values map[string]string

	if err := json.Unmarshal([]byte(stdout), &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownDataShape, path, err)
	}

	if key != "" {
		v, ok := values[key]
		if !ok {
			return map[string]string{}, nil
		}

		return map[string]string{key: v}, nil
	}

	return values, nil
}

// Set writes value at path:key. When value is empty the caller is assumed to
// be in interactive mode and the subprocess is allowed to consume the
// controlling terminal (its stdio is not redirected by the runner).
func (c *Client) Set(ctx context.Context, path, key, value string) error {
	args := []string{"set", path, fmt.Sprintf("%s=%s", key, value)}

	_, stderr, code, err := c.runner.Run(ctx, c.baseEnv(), args...)
	if err != nil {
		return fmt.Errorf("safe set %s:%s: %w", path, key, err)
	}

	if code != 0 {
		return fmt.Errorf("safe set %s:%s: %s", path, key, stderr)
	}

	return nil
}

// Has reports whether path (optionally scoped to key) exists, via the
// store's exists-style subprocess whose exit code is interpreted as a
// predicate (0 = exists, non-zero = does not).
func (c *Client) Has(ctx context.Context, path, key string) (bool, error) {
	target := path
	if key != "" {
		target = path + ":" + key
	}

	_, _, code, err := c.runner.Run(ctx, c.baseEnv(), "exists", target)
	if err != nil {
		return false, fmt.Errorf("safe exists %s: %w", target, err)
	}

	return code == 0, nil
}

// Paths enumerates leaf paths under each of the given prefixes. If the
// subprocess returns a prefix as its own only result, a Has probe
// disambiguates a single leaf from an empty subtree.
func (c *Client) Paths(ctx context.Context, prefixes ...string) ([]string, error) {
	args := append([]string{"paths"}, prefixes...)

	stdout, stderr, code, err := c.runner.Run(ctx, c.baseEnv(), args...)
	if err != nil {
		return nil, fmt.Errorf("safe paths: %w", err)
	}

	if code != 0 {
		return nil, fmt.Errorf("safe paths: %s", stderr)
	}

	lines := splitNonEmptyLines(stdout)

	if len(lines) == 1 && len(prefixes) == 1 && lines[0] == prefixes[0] {
		exists, err := c.Has(ctx, prefixes[0], "")
		if err != nil {
			return nil, err
		}

		if !exists {
			return nil, nil
		}
	}

	return lines, nil
}

// SetAll writes every key in values at path in one invocation, used by
// Exodus publication so the record appears atomically per key.
func (c *Client) SetAll(ctx context.Context, path string, values map[string]string) error {
	args := make([]string, 0, len(values)+2)
	args = append(args, "set", path)

	for k, v := range values {
		args = append(args, fmt.Sprintf("%s=%s", k, v))
	}

	_, stderr, code, err := c.runner.Run(ctx, c.baseEnv(), args...)
	if err != nil {
		return fmt.Errorf("safe set %s (%d keys): %w", path, len(values), err)
	}

	if code != 0 {
		return fmt.Errorf("safe set %s (%d keys): %s", path, len(values), stderr)
	}

	return nil
}

// Rm removes path.
func (c *Client) Rm(ctx context.Context, path string) error {
	_, stderr, code, err := c.runner.Run(ctx, c.baseEnv(), "rm", "-f", path)
	if err != nil {
		return fmt.Errorf("safe rm %s: %w", path, err)
	}

	if code != 0 {
		return fmt.Errorf("safe rm %s: %s", path, stderr)
	}

	return nil
}

// Export dumps every key under prefix as a flattened path->key->value map,
// used to pre-load the Plan Validator's expected-key lookups.
func (c *Client) Export(ctx context.Context, prefix string) (map[string]map[string]string, error) {
	stdout, stderr, code, err := c.runner.Run(ctx, c.baseEnv(), "export", prefix)
	if err != nil {
		return nil, fmt.Errorf("safe export %s: %w", prefix, err)
	}

	if code != 0 {
		return nil, fmt.Errorf("safe export %s: %s", prefix, stderr)
	}

	var values map[string]map[string]string

	if err := json.Unmarshal([]byte(stdout), &values); err != nil {
		return nil, fmt.Errorf("%w: export %s: %w", ErrUnknownDataShape, prefix, err)
	}

	return values, nil
}

// Query issues a raw invocation of the store binary, always overriding the
// target-selection env var and clearing verbose/debug env.
func (c *Client) Query(ctx context.Context, args ...string) (stdout string, stderr string, err error) {
	stdout, stderr, _, err = c.runner.Run(ctx, c.baseEnv(), args...)
	if err != nil {
		return "", "", fmt.Errorf("safe query %v: %w", args, err)
	}

	return stdout, stderr, nil
}

// QueryRaw issues a raw invocation of the store binary and returns its exit
// code without collapsing it into an error, for callers (the Plan Executor)
// that must distinguish a clean non-zero exit from a subprocess failure.
func (c *Client) QueryRaw(ctx context.Context, args ...string) (output string, exitCode int, err error) {
	stdout, stderr, code, err := c.runner.Run(ctx, c.baseEnv(), args...)
	if err != nil {
		return "", -1, fmt.Errorf("safe query %v: %w", args, err)
	}

	if stderr != "" {
		return stdout + stderr, code, nil
	}

	return stdout, code, nil
}

// Status derives the target's reachability/authentication state. Derivation
// order: TCP probe of host:port, token presence, subprocess status call
// (exit code 2 means sealed), then the distinguished handshake path.
func (c *Client) Status(ctx context.Context) (Status, error) {
	if !c.probeReachable() {
		return StatusUnreachable, nil
	}

	if c.token == "" {
		return StatusUnauthenticated, nil
	}

	_, _, code, err := c.runner.Run(ctx, c.baseEnv(), "status")
	if err != nil {
		return "", fmt.Errorf("safe status: %w", err)
	}

	if code == sealedExitCode {
		return StatusSealed, nil
	}

	exists, err := c.Has(ctx, handshakePath, "")
	if err != nil {
		return "", err
	}

	if !exists {
		return StatusUninitialized, nil
	}

	return StatusOK, nil
}

func (c *Client) probeReachable() bool {
	parsed, err := url.Parse(c.target.URL)
	if err != nil {
		return false
	}

	host := parsed.Hostname()

	port := parsed.Port()
	if port == "" {
		if parsed.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), probeTimeout)
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}

func splitNonEmptyLines(s string) []string {
	var out []string

	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

// execRunner is the production CommandRunner, shelling out to the store
// binary exactly as the teacher's kustomize/kubeconform clients do.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, env []string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, binaryName, args...) //nolint:gosec // store binary name is fixed, args are constructed internally
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0

	if exitErr, ok := asExitError(err); ok {
		exitCode = exitErr
		err = nil
	}

	if err != nil {
		return stdout.String(), stderr.String(), -1, fmt.Errorf("run %s: %w", binaryName, err)
	}

	return stdout.String(), stderr.String(), exitCode, nil
}

func asExitError(err error) (int, bool) {
	type exitCoder interface{ ExitCode() int }

	var ec exitCoder
	if err == nil {
		return 0, false
	}

	if e, ok := err.(exitCoder); ok { //nolint:errorlint // ExitCode lookup needs the concrete/interface assertion, not errors.As
		ec = e

		return ec.ExitCode(), true
	}

	return 0, false
}
