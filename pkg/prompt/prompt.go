// Package prompt provides the single, mockable sink through which every
// interactive confirmation and selection in Genesis is issued. Centralizing
// it here means tests can substitute a scripted reader/TTY-checker instead of
// monkey-patching os.Stdin, and production code has exactly one place that
// decides whether a controlling terminal is present.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	stdinReader io.Reader = os.Stdin
	ttyChecker            = defaultIsTerminal
)

func defaultIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// SetReaderForTests overrides the input source used by Confirm/Select.
// Returns a restore function; callers should defer it.
func SetReaderForTests(r io.Reader) func() {
	previous := stdinReader
	stdinReader = r

	return func() { stdinReader = previous }
}

// SetTTYCheckerForTests overrides the controlling-terminal check.
// Returns a restore function; callers should defer it.
func SetTTYCheckerForTests(check func() bool) func() {
	previous := ttyChecker
	ttyChecker = check

	return func() { ttyChecker = previous }
}

// IsInteractive reports whether a controlling terminal is available for
// prompting.
func IsInteractive() bool {
	return ttyChecker()
}

// Confirm prints prompt and reads a line, treating "yes" (case-insensitively)
// as confirmation and anything else — including a blank line — as the user
// abort sentinel described in Design Note "Interactive prompting".
func Confirm(out io.Writer, prompt string) (bool, error) {
	if !IsInteractive() {
		return false, ErrNoControllingTerminal
	}

	fmt.Fprintf(out, "%s [yes/no]: ", prompt)

	scanner := bufio.NewScanner(stdinReader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("read confirmation: %w", err)
		}

		return false, nil
	}

	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "yes"), nil
}

// Select prints options and reads a 1-based index, returning the chosen
// option's index (0-based) or an error if the input is not a valid choice.
func Select(out io.Writer, prompt string, options []string) (int, error) {
	if !IsInteractive() {
		return -1, ErrNoControllingTerminal
	}

	fmt.Fprintln(out, prompt)

	for i, opt := range options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}

	fmt.Fprint(out, "choice: ")

	scanner := bufio.NewScanner(stdinReader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return -1, fmt.Errorf("read selection: %w", err)
		}

		return -1, ErrInvalidSelection
	}

	choice := strings.TrimSpace(scanner.Text())

	for i, opt := range options {
		if choice == opt || choice == fmt.Sprintf("%d", i+1) {
			return i, nil
		}
	}

	return -1, ErrInvalidSelection
}
