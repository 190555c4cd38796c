package fsutil

import "errors"

// File permission modes used when writing generated artifacts to disk.
const (
	dirPermUserGroupRX = 0o750
	filePermUserRW     = 0o640
)

// ErrEmptyOutputPath is returned when TryWriteFile is called with an empty output path.
var ErrEmptyOutputPath = errors.New("output path cannot be empty")

// ErrBasePath is returned when SafeJoin is called with an empty base directory.
var ErrBasePath = errors.New("base path cannot be empty")

// ErrPathOutsideBase is returned when a joined path escapes its intended base directory.
var ErrPathOutsideBase = errors.New("invalid path: file is outside base directory")

// ErrNotADirectory is returned when PushDir is pointed at a path that is not a directory.
var ErrNotADirectory = errors.New("path is not a directory")
