package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cruciblepm/crucible/pkg/logger"
)

// Classify partitions a completed scheduler run into successful, failed and
// remaining (cancelled) actions and builds the terminal FinalResult (spec
// §4.5). A run with zero failures yields StatusOK; any failure yields
// StatusError regardless of how many actions succeeded.
func Classify(graph *ActionGraph, outcomes map[string]Outcome) *FinalResult {
	var successful, failed, remaining []Action
	for _, n := range graph.Nodes() {
		switch outcomes[n.ID].Status {
		case OutcomeSuccess:
			successful = append(successful, *n)
		case OutcomeFailed:
			failed = append(failed, *n)
		case OutcomeCancelled:
			remaining = append(remaining, *n)
		}
	}

	if len(failed) == 0 {
		return &FinalResult{Status: StatusOK, Actions: successful}
	}
	return &FinalResult{Status: StatusError, Successful: successful, Failed: failed, Remaining: remaining}
}

// Reporter renders a FinalResult the way the CLI presents it to the user
// (spec §4.5). Report is a no-op for a single-action plan: spec §4.5 only
// prints the per-action breakdown once there is more than one action to
// distinguish.
type Reporter struct {
	Out io.Writer
}

// Report writes the human-facing summary of a completed apply.
func (r *Reporter) Report(result *FinalResult, outcomes map[string]Outcome) {
	total := len(result.Actions) + len(result.Successful) + len(result.Failed) + len(result.Remaining)
	if total < 2 {
		return
	}

	switch result.Status {
	case StatusOK:
		fmt.Fprintf(r.Out, "Done, %d %s.\n", len(result.Actions), pluralize(len(result.Actions), "action", "actions"))
	case StatusError:
		if len(result.Successful) > 0 {
			fmt.Fprintf(r.Out, "%d %s completed successfully:\n", len(result.Successful), pluralize(len(result.Successful), "action", "actions"))
			for _, a := range result.Successful {
				fmt.Fprintf(r.Out, "  - %s %s\n", a.Verb(), a.Target.String())
			}
		}
		if len(result.Failed) > 0 {
			fmt.Fprintf(r.Out, "%d %s failed:\n", len(result.Failed), pluralize(len(result.Failed), "action", "actions"))
			for _, a := range result.Failed {
				r.reportFailure(a, outcomes[a.ID])
			}
		}
		if len(result.Remaining) > 0 {
			fmt.Fprintf(r.Out, "%d %s not attempted:\n", len(result.Remaining), pluralize(len(result.Remaining), "action", "actions"))
			for _, a := range result.Remaining {
				fmt.Fprintf(r.Out, "  - %s %s\n", a.Verb(), a.Target.String())
			}
		}
	}
}

// reportFailure writes one failed action's structured error, keyed by its
// verb (spec §4.5): "<verb> <package>: <message>", with process errors
// expanding into an indented stdout/stderr tail.
func (r *Reporter) reportFailure(a Action, outcome Outcome) {
	ae := AsActionError(outcome.Err)
	if ae == nil {
		fmt.Fprintf(r.Out, "  - %s %s: unknown error\n", a.Verb(), a.Target.String())
		return
	}
	fmt.Fprintf(r.Out, "  - %s %s: %s\n", a.Verb(), a.Target.String(), ae.Message)
	if ae.Process != nil {
		if tail := strings.Join(lastLines(ae.Process.Stderr, 5), "\n    "); tail != "" {
			fmt.Fprintf(r.Out, "    %s\n", tail)
		}
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

func lastLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

// LogOutcome emits a structured per-action log entry, letting non-terminal
// consumers (e.g. a daemon) observe progress without parsing the
// human-readable report.
func LogOutcome(a Action, outcome Outcome) {
	fields := logrus.Fields{"package": a.Target.String(), "action": string(a.Kind)}
	switch outcome.Status {
	case OutcomeSuccess:
		logger.Info(a.Verb()+" succeeded", fields)
	case OutcomeCancelled:
		logger.Debug(a.Verb()+" cancelled", fields)
	case OutcomeFailed:
		ae := AsActionError(outcome.Err)
		fields["kind"] = string(ae.Kind)
		fields["error"] = ae.Error()
		logger.Error(a.Verb()+" failed", fields)
	}
}
