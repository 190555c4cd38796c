// Package config implements the Environment Composer's parameter and
// manifest merge views. YAML merge semantics themselves are a Non-goal —
// this package is a thin os/exec client over the external merge tool,
// following the same thin-wrapper shape as the store and kustomize clients,
// plus the bounded adaptive-merge retry loop described in Design Note
// "Adaptive merge loop".
package config

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"

	"gopkg.in/yaml.v3"
)

// mergerBinary is the external YAML merge tool genesis shells out to.
const mergerBinary = "spruce"

// maxAdaptiveMergeAttempts bounds the adaptive-merge retry loop.
const maxAdaptiveMergeAttempts = 5

// unresolvableOperatorPattern extracts the exact operator text the merger's
// error report blames, e.g. `$.params.missing: Unable to resolve ` vault
// "secret/missing:key" ``. Genesis rewrites only that exact text — it never
// guesses at the failing operator.
var unresolvableOperatorPattern = regexp.MustCompile(`Unable to resolve \x60(.+)\x60`)

// Merger runs the external merge tool against an ordered file list.
type Merger struct {
	runner func(ctx context.Context, args []string) (stdout, stderr []byte, err error)
}

// NewMerger constructs a Merger backed by the real spruce binary.
func NewMerger() *Merger {
	return &Merger{runner: execMerge}
}

// NewMergerForTests constructs a Merger backed by a fake runner, letting
// tests exercise Merge/AdaptiveMerge without invoking the real binary.
func NewMergerForTests(runner func(ctx context.Context, args []string) (stdout, stderr []byte, err error)) *Merger {
	return &Merger{runner: runner}
}

// Merge runs a single merge pass over files. When skipEval is true,
// evaluation of `((...))` operators is suppressed (used for the parameter
// view); when false, operators are fully evaluated (used for the manifest
// view).
func (m *Merger) Merge(ctx context.Context, files []string, skipEval bool) (map[string]any, error) {
	args := []string{"merge"}
	if skipEval {
		args = append(args, "--skip-eval")
	}

	args = append(args, files...)

	stdout, stderr, err := m.runner(ctx, args)
	if err != nil {
		return nil, &MergeError{Files: files, Stderr: string(stderr), Cause: err}
	}

	var result map[string]any

	if err := yaml.Unmarshal(stdout, &result); err != nil {
		return nil, fmt.Errorf("unmarshal merge output: %w", err)
	}

	return result, nil
}

// AdaptiveMerge evaluates files fully, and on failure rewrites the exact
// unresolvable operator text reported by the merger to a deferred form
// (`(( defer <op> ... ))`) in an in-memory copy of the offending file,
// retrying up to maxAdaptiveMergeAttempts times. The original error is
// always preserved so it can be surfaced if the loop exhausts its budget.
func (m *Merger) AdaptiveMerge(ctx context.Context, files []string, readFile func(path string) ([]byte, error), writeTemp func(content []byte) (path string, cleanup func(), err error)) (map[string]any, error) {
	working := append([]string(nil), files...)

	var lastErr error

	for attempt := 0; attempt < maxAdaptiveMergeAttempts; attempt++ {
		result, err := m.Merge(ctx, working, false)
		if err == nil {
			return result, nil
		}

		if lastErr == nil {
			lastErr = err
		}

		var mergeErr *MergeError
		if !asMergeError(err, &mergeErr) {
			return nil, err
		}

		operator := unresolvableOperatorPattern.FindStringSubmatch(mergeErr.Stderr)
		if operator == nil {
			break
		}

		rewritten, rewroteFile, rewriteErr := deferOperatorInFiles(working, operator[1], readFile)
		if rewriteErr != nil {
			return nil, rewriteErr
		}

		if rewroteFile == "" {
			break
		}

		path, cleanup, err := writeTemp(rewritten)
		if err != nil {
			return nil, fmt.Errorf("write adaptive-merge temp file: %w", err)
		}

		defer cleanup()

		working = replaceFile(working, rewroteFile, path)
	}

	return nil, fmt.Errorf("adaptive merge exhausted %d attempts: %w", maxAdaptiveMergeAttempts, lastErr)
}

func asMergeError(err error, target **MergeError) bool {
	me, ok := err.(*MergeError) //nolint:errorlint // sentinel struct type assertion
	if !ok {
		return false
	}

	*target = me

	return true
}

func deferOperatorInFiles(files []string, operatorText string, readFile func(path string) ([]byte, error)) ([]byte, string, error) {
	deferred := fmt.Sprintf("(( defer %s ))", operatorText)
	literal := fmt.Sprintf("(( %s ))", operatorText)

	for _, f := range files {
		content, err := readFile(f)
		if err != nil {
			return nil, "", fmt.Errorf("read %s for adaptive merge: %w", f, err)
		}

		if bytes.Contains(content, []byte(literal)) {
			return bytes.Replace(content, []byte(literal), []byte(deferred), 1), f, nil
		}
	}

	return nil, "", nil
}

func replaceFile(files []string, oldPath, newPath string) []string {
	out := make([]string, len(files))

	for i, f := range files {
		if f == oldPath {
			out[i] = newPath
		} else {
			out[i] = f
		}
	}

	return out
}

func execMerge(ctx context.Context, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, mergerBinary, args...) //nolint:gosec // merger binary name fixed, args constructed internally

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("run %s: %w", mergerBinary, err)
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}

// MergeError wraps a failed merge invocation with the files involved and the
// merger's raw stderr, preserved so adaptive-merge exhaustion can surface the
// original error text verbatim.
type MergeError struct {
	Files  []string
	Stderr string
	Cause  error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %v: %s", e.Files, e.Stderr)
}

func (e *MergeError) Unwrap() error {
	return e.Cause
}
