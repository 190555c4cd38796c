package store

import "errors"

// Sentinel errors for store and target-registry operations.
var (
	// ErrInvalidTargetURL is returned when a target's URL does not match the
	// `^https?://host(:port)?$` grammar.
	ErrInvalidTargetURL = errors.New("invalid target url")

	// ErrTargetNotFound is returned when resolve matches zero targets.
	ErrTargetNotFound = errors.New("no matching target found")

	// ErrAmbiguousTarget is returned when a URL resolves to more than one
	// alias and the caller did not ask to accept all of them.
	ErrAmbiguousTarget = errors.New("url matches multiple target aliases")

	// ErrNoControllingTerminal is returned when an interactive target picker
	// is invoked outside of a controlling terminal.
	ErrNoControllingTerminal = errors.New("no controlling terminal for interactive target selection")

	// ErrUnknownDataShape is returned when the store binary emits a JSON
	// shape for `get`/`export` output that does not match any known form.
	ErrUnknownDataShape = errors.New("unexpected data shape from store")
)
