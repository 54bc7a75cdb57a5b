package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// solutionRecordEntry is one element of the audit log's solution array (spec
// §6): exactly one of its fields is set, keyed by the action it describes.
type solutionRecordEntry struct {
	Install   string   `json:"install,omitempty"`
	Upgrade   []string `json:"upgrade,omitempty"`
	Downgrade []string `json:"downgrade,omitempty"`
	Recompile string   `json:"recompile,omitempty"`
	Delete    string   `json:"delete,omitempty"`
}

// errorRecord is the per-failure audit entry (spec §6, §7):
// {"package": name-version, "error": E} where E is a single-key object
// keyed by error kind.
type errorRecord struct {
	Package string          `json:"package"`
	Error   json.RawMessage `json:"error"`
}

// processErrorPayload is the process-error kind's structured payload (spec
// §6): {"code": int-as-string, "duration": float, "info": {k:v},
// "stdout": [str], "stderr": [str]}.
type processErrorPayload struct {
	Code     string            `json:"code"`
	Duration float64           `json:"duration"`
	Info     map[string]string `json:"info"`
	Stdout   []string          `json:"stdout"`
	Stderr   []string          `json:"stderr"`
}

// errorPayload renders an ActionError as spec §6's E: a single-key object
// whose key is the error kind and whose value is either the structured
// process-error payload or a plain message string.
func errorPayload(err *ActionError) (json.RawMessage, error) {
	if err.Kind == KindProcessError && err.Process != nil {
		p := err.Process
		info := p.Env
		if info == nil {
			info = map[string]string{}
		}
		stdout := p.Stdout
		if stdout == nil {
			stdout = []string{}
		}
		stderr := p.Stderr
		if stderr == nil {
			stderr = []string{}
		}
		return json.Marshal(map[string]processErrorPayload{
			string(err.Kind): {
				Code:     p.Code,
				Duration: p.Duration.Seconds(),
				Info:     info,
				Stdout:   stdout,
				Stderr:   stderr,
			},
		})
	}
	return json.Marshal(map[string]string{string(err.Kind): err.Error()})
}

// AuditLog appends newline-delimited JSON records describing a solution and
// any failures it produced, the way a package manager's transaction log
// lets an operator reconstruct what an apply actually did after the fact.
// It is append-only, unlike the StatePersister's whole-file atomic rewrite:
// one write per record, and encoding happens in memory first so a record
// is never written in pieces.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

// NewAuditLog returns an audit log appending to the given absolute path.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// LogSolution appends a single record for the solution: one array holding
// one entry per action (spec §6).
func (a *AuditLog) LogSolution(solution *Solution) error {
	if solution == nil || solution.ToProcess == nil {
		return nil
	}
	entries := make([]solutionRecordEntry, 0, solution.ToProcess.Len())
	for _, n := range solution.ToProcess.Nodes() {
		entries = append(entries, solutionEntry(*n))
	}
	return a.appendLine(entries)
}

// solutionEntry renders a single Action as its solution-record entry (spec
// §6's {"install":p} / {"upgrade":[prev,p]} / {"downgrade":[prev,p]} /
// {"recompile":p} / {"delete":p} shapes).
func solutionEntry(n Action) solutionRecordEntry {
	switch n.Kind {
	case ActionToChange:
		if n.Previous == nil {
			return solutionRecordEntry{Install: n.Target.String()}
		}
		if n.Previous.Version == n.Target.Version {
			return solutionRecordEntry{Install: n.Target.String()}
		}
		pair := []string{n.Previous.String(), n.Target.String()}
		if n.Verb() == "downgrading to" {
			return solutionRecordEntry{Downgrade: pair}
		}
		return solutionRecordEntry{Upgrade: pair}
	case ActionToRecompile:
		return solutionRecordEntry{Recompile: n.Target.String()}
	case ActionToDelete:
		return solutionRecordEntry{Delete: n.Target.String()}
	default:
		return solutionRecordEntry{}
	}
}

// LogFailure appends one error record for a failed action (spec §7).
func (a *AuditLog) LogFailure(target Package, err *ActionError) error {
	if err == nil {
		return nil
	}
	payload, marshalErr := errorPayload(err)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal error payload: %w", marshalErr)
	}
	return a.appendLine(errorRecord{Package: target.String(), Error: payload})
}

func (a *AuditLog) appendLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log %s: %w", a.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}
