package fsutil

import (
	"fmt"
	"os"
)

// PushDir changes the process working directory to dir and returns a restore
// function that changes it back to the original directory. Callers must defer
// the restore function immediately so the working directory is restored on
// every exit path, including panics and early returns during a merge.
//
//	restore, err := fsutil.PushDir(mergeRoot)
//	if err != nil {
//		return err
//	}
//	defer restore()
func PushDir(dir string) (func(), error) {
	previous, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get current working directory: %w", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("chdir to %s: %w", dir, err)
	}

	return func() {
		_ = os.Chdir(previous)
	}, nil
}
