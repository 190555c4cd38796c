// Package exodus implements the Exodus Record: flattening the exodus
// subtree of a deployed manifest into a key→value map and publishing it to
// the credentials store, with a manifest SHA-1 added for drift detection.
package exodus

import (
	"context"
	"crypto/sha1" //nolint:gosec // SHA-1 is the documented drift-detection digest, not a security boundary
	"encoding/hex"
	"fmt"
)

// Publisher writes and clears Exodus records against the credentials
// store, mirroring the Store Client's shape without importing it directly
// so this package stays testable against a narrow interface.
type Publisher interface {
	Rm(ctx context.Context, path string) error
	SetAll(ctx context.Context, path string, values map[string]string) error
}

// Record is the flattened key→value map published under
// <exodus_mount>/<env>/<type>, plus the deployed manifest's SHA-1.
type Record struct {
	Mount        string
	Environment  string
	Type         string
	Values       map[string]string
	ManifestSHA1 string
}

// Flatten walks the `exodus` subtree of a merged manifest into a dotted
// key→value map of string values, resolving any unresolved `((var))`
// reference via resolveVar (the BOSH-variables file, then credhub).
func Flatten(exodusTree map[string]any, resolveVar func(name string) (string, bool)) map[string]string {
	out := make(map[string]string)
	flattenInto(out, "", exodusTree, resolveVar)

	return out
}

func flattenInto(out map[string]string, prefix string, tree map[string]any, resolveVar func(string) (string, bool)) {
	for key, value := range tree {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]any:
			flattenInto(out, path, v, resolveVar)
		case string:
			out[path] = resolveIfVar(v, resolveVar)
		default:
			out[path] = fmt.Sprintf("%v", v)
		}
	}
}

func resolveIfVar(value string, resolveVar func(string) (string, bool)) string {
	name, isVar := varReference(value)
	if !isVar || resolveVar == nil {
		return value
	}

	if resolved, ok := resolveVar(name); ok {
		return resolved
	}

	return value
}

// varReference reports whether value is an unresolved `((name))` reference
// and, if so, the variable name inside it.
func varReference(value string) (name string, ok bool) {
	const prefix, suffix = "((", "))"

	if len(value) < len(prefix)+len(suffix) {
		return "", false
	}

	if value[:len(prefix)] != prefix || value[len(value)-len(suffix):] != suffix {
		return "", false
	}

	return value[len(prefix) : len(value)-len(suffix)], true
}

// ManifestSHA1 computes the drift-detection digest of a deployed manifest's
// raw bytes.
func ManifestSHA1(manifest []byte) string {
	sum := sha1.Sum(manifest) //nolint:gosec // documented drift-detection digest

	return hex.EncodeToString(sum[:])
}

// Publish removes any prior record at mount/env/type and sets every key of
// the new record in one invocation, matching the documented atomic-per-key
// publication guarantee.
func Publish(ctx context.Context, pub Publisher, rec Record) error {
	path := fmt.Sprintf("%s/%s/%s", rec.Mount, rec.Environment, rec.Type)

	if err := pub.Rm(ctx, path); err != nil {
		return fmt.Errorf("clear prior exodus record at %s: %w", path, err)
	}

	values := make(map[string]string, len(rec.Values)+1)
	for k, v := range rec.Values {
		values[k] = v
	}

	values["manifest_sha1"] = rec.ManifestSHA1

	if err := pub.SetAll(ctx, path, values); err != nil {
		return fmt.Errorf("publish exodus record at %s: %w", path, err)
	}

	return nil
}
