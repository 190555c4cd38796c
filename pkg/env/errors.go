package env

import "errors"

// ErrInvalidName is returned when an environment name fails the naming grammar.
var ErrInvalidName = errors.New("invalid environment name")

// ErrMissingEnvDeclaration is returned when an environment file does not
// declare its own name in genesis.env.
var ErrMissingEnvDeclaration = errors.New("environment file does not declare genesis.env matching its filename")

// ErrFileNotFound is returned when an environment's own file does not exist.
var ErrFileNotFound = errors.New("environment file not found")
