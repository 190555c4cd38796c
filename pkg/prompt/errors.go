package prompt

import "errors"

// ErrNoControllingTerminal is returned when a prompt is attempted without a
// controlling terminal; the remedial flag is documented at the call site
// (e.g. "--no-prompt") rather than in this package.
var ErrNoControllingTerminal = errors.New("no controlling terminal for interactive prompt")

// ErrInvalidSelection is returned when Select receives input matching none
// of the offered options.
var ErrInvalidSelection = errors.New("input does not match any offered option")
