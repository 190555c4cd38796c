package plan

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Action is the verb applied to a Plan by the Executor.
type Action string

const (
	ActionAdd     Action = "add"
	ActionRecreate Action = "recreate"
	ActionRenew   Action = "renew"
	ActionRemove  Action = "remove"
)

// Default validity windows, per 4.5.
const (
	defaultCAValidity    = "10y"
	defaultLeafValidity  = "1y"
)

// Default key usage sets, per 4.5.
var (
	defaultUsage   = []string{"server_auth", "client_auth"}
	defaultCAUsage = []string{"server_auth", "client_auth", "crl_sign", "key_cert_sign"}
)

var (
	skippedPattern = regexp.MustCompile(`refusing to .* already present`)
	renewedPattern = regexp.MustCompile(`Renewed x509 cert.*expiry set to (\S+)`)
)

// Result is the outcome of running one Action against one Plan.
type Result string

const (
	ResultOK      Result = "ok"
	ResultSkipped Result = "skipped"
	ResultError   Result = "error"
)

// ItemOutcome is reported to the progress callback for one executed plan.
type ItemOutcome struct {
	Plan    Plan
	Action  Action
	Result  Result
	Detail  string // new expiry for a successful renew, subprocess output for an error, or why an unsupported action was skipped
}

// EventKind enumerates the Plan Executor's progress callback events.
type EventKind string

const (
	EventWait      EventKind = "wait"
	EventWaitDone  EventKind = "wait-done"
	EventInit      EventKind = "init"
	EventStartItem EventKind = "start-item"
	EventDoneItem  EventKind = "done-item"
	EventPrompt    EventKind = "prompt"
	EventEmpty     EventKind = "empty"
	EventAbort     EventKind = "abort"
	EventCompleted EventKind = "completed"
)

// Event is delivered to the progress callback; all running state (counters,
// elapsed time, accumulated errors) is held by the callback, not here.
type Event struct {
	Kind    EventKind
	Plan    Plan
	Outcome *ItemOutcome
	Total   int
	Index   int
}

// Runner issues one opaque command against the Store Client and returns its
// raw stdout/stderr and exit code, matching the Store Client's QueryRaw shape.
type Runner interface {
	Run(ctx context.Context, args []string) (output string, exitCode int, err error)
}

// Executor runs a Plan Executor batch: one Action per Plan, emitted as an
// opaque command list against the Store Client via Runner.
type Executor struct {
	runner Runner
}

// NewExecutor constructs an Executor backed by runner.
func NewExecutor(runner Runner) *Executor {
	return &Executor{runner: runner}
}

// Run executes action against every plan in order, delivering progress
// through report. A Runner error or a non-zero exit code stops the batch
// immediately.
func (x *Executor) Run(ctx context.Context, plans []Plan, action Action, report func(Event)) error {
	if report == nil {
		report = func(Event) {}
	}

	if len(plans) == 0 {
		report(Event{Kind: EventEmpty})

		return nil
	}

	report(Event{Kind: EventInit, Total: len(plans)})

	for i, p := range plans {
		report(Event{Kind: EventStartItem, Plan: p, Total: len(plans), Index: i})

		outcome, err := x.runOne(ctx, p, action)
		if err != nil {
			report(Event{Kind: EventAbort, Plan: p, Outcome: &outcome, Total: len(plans), Index: i})

			return fmt.Errorf("execute %s %s: %w", action, p.Path, err)
		}

		report(Event{Kind: EventDoneItem, Plan: p, Outcome: &outcome, Total: len(plans), Index: i})
	}

	report(Event{Kind: EventCompleted, Total: len(plans)})

	return nil
}

func (x *Executor) runOne(ctx context.Context, p Plan, action Action) (ItemOutcome, error) {
	if p.Kind == KindError {
		return ItemOutcome{Plan: p, Action: action, Result: ResultError, Detail: p.Error}, nil
	}

	cmds, skip := commandsFor(p, action)
	if skip {
		return ItemOutcome{Plan: p, Action: action, Result: ResultSkipped, Detail: fmt.Sprintf("%s not supported", action)}, nil
	}

	var output string

	for _, args := range cmds {
		out, exitCode, err := x.runner.Run(ctx, args)
		if err != nil {
			return ItemOutcome{}, err
		}

		if exitCode != 0 {
			return ItemOutcome{}, fmt.Errorf("exit code %d: %s", exitCode, out)
		}

		output = out
	}

	return interpretOutput(p, action, output), nil
}

func interpretOutput(p Plan, action Action, output string) ItemOutcome {
	switch {
	case skippedPattern.MatchString(output):
		return ItemOutcome{Plan: p, Action: action, Result: ResultSkipped}
	case action == ActionRenew && renewedPattern.MatchString(output):
		m := renewedPattern.FindStringSubmatch(output)

		return ItemOutcome{Plan: p, Action: action, Result: ResultOK, Detail: m[1]}
	case output == "":
		return ItemOutcome{Plan: p, Action: action, Result: ResultOK}
	default:
		return ItemOutcome{Plan: p, Action: action, Result: ResultError, Detail: output}
	}
}

// commandsFor builds the opaque command argument lists for p/action, per the
// 4.5 action table. Most actions issue exactly one command; removing a
// formatted random value issues two (the value itself, then its paired
// destination file), which is why this returns a list of commands rather
// than a single one. skip is true for actions a variant does not support
// (renew, for rsa, ssh, dhparams and random plans).
func commandsFor(p Plan, action Action) (cmds [][]string, skip bool) {
	noClobber := action == ActionAdd || (action == ActionRecreate && p.Fixed)

	switch p.Kind {
	case KindX509:
		args, skip := x509Command(p, action, noClobber)

		return [][]string{args}, skip
	case KindRSA:
		args, skip := rsaSSHCommand("rsa", p, action, noClobber)

		return [][]string{args}, skip
	case KindSSH:
		args, skip := rsaSSHCommand("ssh", p, action, noClobber)

		return [][]string{args}, skip
	case KindDHParams:
		args, skip := dhparamCommand(p, action, noClobber)

		return [][]string{args}, skip
	case KindRandom:
		return randomCommands(p, action, noClobber)
	default:
		return nil, true
	}
}

func x509Command(p Plan, action Action, noClobber bool) ([]string, bool) {
	if action == ActionRemove {
		return []string{"rm", "-f", p.Path}, false
	}

	if action == ActionRenew {
		return []string{"x509", "renew", p.Path, "--ttl", validFor(p)}, false
	}

	args := []string{"x509", "issue", p.Path, "--ttl", validFor(p)}

	if p.IsCA {
		args = append(args, "--ca")
	}

	args = append(args, "--name", ca0rName(p))
	args = append(args, "--key-usage", joinUsage(p))

	if p.SignedBy != "" {
		args = append(args, "--signed-by", p.SignedBy)
	}

	if noClobber {
		args = append(args, "--no-clobber")
	}

	return args, false
}

func validFor(p Plan) string {
	if p.ValidFor != "" {
		return p.ValidFor
	}

	if p.IsCA {
		return defaultCAValidity
	}

	return defaultLeafValidity
}

func ca0rName(p Plan) string {
	if len(p.Names) > 0 {
		return p.Names[0]
	}

	if p.IsCA {
		return fmt.Sprintf("ca.n%09d.%s", time.Now().UnixNano()%1_000_000_000, p.BasePath)
	}

	return p.BasePath
}

func joinUsage(p Plan) string {
	usage := p.Usage
	if len(usage) == 0 {
		if p.IsCA {
			usage = defaultCAUsage
		} else {
			usage = defaultUsage
		}
	}

	out := usage[0]
	for _, u := range usage[1:] {
		out += "," + u
	}

	return out
}

func rsaSSHCommand(kind string, p Plan, action Action, noClobber bool) ([]string, bool) {
	if action == ActionRemove {
		return []string{"rm", "-f", p.Path}, false
	}

	if action == ActionRenew {
		return nil, true
	}

	args := []string{kind, fmt.Sprintf("%d", p.Size), p.Path}
	if noClobber {
		args = append(args, "--no-clobber")
	}

	return args, false
}

func dhparamCommand(p Plan, action Action, noClobber bool) ([]string, bool) {
	if action == ActionRemove {
		return []string{"rm", "-f", p.Path}, false
	}

	if action == ActionRenew {
		return nil, true
	}

	args := []string{"dhparam", fmt.Sprintf("%d", p.Size), p.Path}
	if noClobber {
		args = append(args, "--no-clobber")
	}

	return args, false
}

func randomCommands(p Plan, action Action, noClobber bool) ([][]string, bool) {
	if action == ActionRemove {
		cmds := [][]string{{"rm", "-f", p.Path}}
		if p.Format != "" {
			cmds = append(cmds, []string{"rm", "-f", randomDestination(p)})
		}

		return cmds, false
	}

	if action == ActionRenew {
		return nil, true
	}

	args := []string{"gen", fmt.Sprintf("%d", p.Size)}

	if p.ValidChars != "" {
		args = append(args, "--policy", p.ValidChars)
	}

	args = append(args, p.Path, p.Key)

	if p.Format != "" {
		args = append(args, "--", "fmt", p.Format, p.Path, p.Key, randomDestination(p))
	}

	if noClobber {
		args = append(args, "--no-clobber")
	}

	return [][]string{args}, false
}

func randomDestination(p Plan) string {
	if p.Destination != "" {
		return p.Destination
	}

	return p.Key + "-" + p.Format
}
