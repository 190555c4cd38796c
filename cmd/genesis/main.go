// Package main is the entry point for the Genesis CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"

	"github.com/genesisproject/genesis/pkg/notify"
)

// defaultRemediationWidth is used when stdout isn't a terminal (piped
// output, CI logs) and a column width can't be probed.
const defaultRemediationWidth = 80

func main() {
	exitCode := runSafely(os.Args[1:], runWithArgs, os.Stderr)

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

//nolint:nonamedreturns // Named return simplifies panic recovery logic.
func runSafely(args []string, runner func([]string) int, errWriter io.Writer) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			panicMessage := fmt.Sprintf("panic recovered: %v\n%s", r, debug.Stack())
			notify.WriteMessage(notify.Message{
				Type:    notify.ErrorType,
				Content: panicMessage,
				Writer:  errWriter,
			})

			exitCode = 1
		}
	}()

	exitCode = runner(args)

	return exitCode
}

func runWithArgs(args []string) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)

	if err := Execute(rootCmd); err != nil {
		notify.Errorf(rootCmd.ErrOrStderr(), "%s", wrapRemediation(err.Error()))

		return 1
	}

	return 0
}

// wrapRemediation wraps a multi-line error/remediation message to the
// terminal's width, so a box-drawn or otherwise wide failure message stays
// readable in a narrow window instead of running off the edge.
func wrapRemediation(message string) string {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = defaultRemediationWidth
	}

	return wordwrap.WrapString(message, uint(width)) //nolint:gosec // width is clamped positive above
}
