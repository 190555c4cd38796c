// Package target implements the Target Registry: the list of known
// credentials-store targets, built by New from a target list (LoadFile
// reads that list from a YAML file).
package target

import (
	"fmt"
	"sort"
	"strings"

	"github.com/genesisproject/genesis/pkg/store"
)

// Registry enumerates known store targets and resolves aliases/URLs to a
// single target (or an explicit ambiguity error).
type Registry struct {
	targets []store.Target
}

// New constructs a Registry from a list of targets, validating each URL.
// Targets may share a URL under different aliases: Resolve and
// CollidingURLs handle that ambiguity at lookup time rather than New
// refusing to load the set at all.
func New(targets []store.Target) (*Registry, error) {
	for _, t := range targets {
		if !store.ValidURL(t.URL) {
			return nil, fmt.Errorf("%w: %s", store.ErrInvalidTargetURL, t.URL)
		}
	}

	return &Registry{targets: targets}, nil
}

// Filter returns every target whose non-empty fields in pattern all match.
func (r *Registry) Filter(pattern store.Target) []store.Target {
	var out []store.Target

	for _, t := range r.targets {
		if pattern.Name != "" && pattern.Name != t.Name {
			continue
		}

		if pattern.URL != "" && pattern.URL != t.URL {
			continue
		}

		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Resolve looks up target by URL (if it looks like one) or by alias name.
// acceptAll controls behavior when a URL matches more than one alias: when
// false (the default "select one target" case) it returns ErrAmbiguousTarget;
// when true it returns every matching alias, for "find all uses" callers.
func (r *Registry) Resolve(target string, acceptAll bool) ([]store.Target, error) {
	var matches []store.Target

	if looksLikeURL(target) {
		for _, t := range r.targets {
			if t.URL == target {
				matches = append(matches, t)
			}
		}
	} else {
		for _, t := range r.targets {
			if t.Name == target {
				matches = append(matches, t)
			}
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrTargetNotFound, target)
	}

	if len(matches) > 1 && !acceptAll {
		return nil, fmt.Errorf("%w: %s", store.ErrAmbiguousTarget, target)
	}

	return matches, nil
}

// CollidingURLs returns the set of URLs shared by more than one alias, for
// callers that must hide them from an interactive picker with a warning.
func (r *Registry) CollidingURLs() []string {
	byURL := make(map[string]int, len(r.targets))
	for _, t := range r.targets {
		byURL[t.URL]++
	}

	var out []string

	for url, count := range byURL {
		if count > 1 {
			out = append(out, url)
		}
	}

	sort.Strings(out)

	return out
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
