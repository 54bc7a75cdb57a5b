// Package engine implements the solution application engine: it takes a
// resolved plan of package actions (a Solution) and applies it to the local
// installation, scheduling independent actions in parallel while keeping the
// on-disk package database consistent across failures and interruptions.
package engine

import (
	"fmt"

	"github.com/cruciblepm/crucible/pkg/atom"
)

// Package identifies a single package by name and version. Names compare
// case-insensitively for user input but Name here always holds the
// canonical, display-ready capitalisation.
type Package struct {
	Name    string
	Version string
}

// String renders the package the way the rest of crucible already does,
// e.g. in audit records and progress events: "name@version".
func (p Package) String() string {
	return fmt.Sprintf("%s@%s", p.Name, p.Version)
}

// ActionKind distinguishes the three action variants of spec §3.
type ActionKind string

// Action kinds.
const (
	ActionToChange    ActionKind = "to_change"
	ActionToRecompile ActionKind = "to_recompile"
	ActionToDelete    ActionKind = "to_delete"
)

// Action is a tagged variant over a single package (spec §3).
//
// For ActionToChange, Previous is nil for a fresh install, and non-nil for an
// upgrade or downgrade (the direction is decided by comparing Previous and
// Target's versions, not stored here). For ActionToRecompile and
// ActionToDelete, Target is the package being rebuilt or removed and
// Previous is always nil.
type Action struct {
	ID       string
	Kind     ActionKind
	Previous *Package
	Target   Package
}

// NewAction builds an Action with its ID derived from the target package,
// matching the "name@version" form of Package.String.
func NewAction(kind ActionKind, previous *Package, target Package) Action {
	return Action{ID: target.String(), Kind: kind, Previous: previous, Target: target}
}

// Verb returns the human-facing verb for this action, used by the reporter
// (spec §4.5) keyed by action kind.
func (a Action) Verb() string {
	switch a.Kind {
	case ActionToChange:
		if a.Previous == nil {
			return "installing"
		}
		if atom.CompareVersions(a.Previous.Version, a.Target.Version) < 0 {
			return "upgrading to"
		}
		return "downgrading to"
	case ActionToRecompile:
		return "recompiling"
	case ActionToDelete:
		return "removing"
	default:
		return "processing"
	}
}

// ActionGraph is a DAG of Actions with edges from prerequisite to dependent
// (spec §3 / GLOSSARY).
type ActionGraph struct {
	nodes map[string]*Action
	order []string            // insertion order, for deterministic iteration
	succ  map[string][]string // prerequisite -> dependents
	pred  map[string][]string // dependent -> prerequisites
}

// NewActionGraph returns an empty graph.
func NewActionGraph() *ActionGraph {
	return &ActionGraph{
		nodes: make(map[string]*Action),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
	}
}

// AddNode registers an action as a graph node. Re-adding the same ID is a
// no-op on the node payload but keeps existing edges.
func (g *ActionGraph) AddNode(a Action) {
	if _, exists := g.nodes[a.ID]; !exists {
		g.order = append(g.order, a.ID)
	}
	cp := a
	g.nodes[a.ID] = &cp
}

// AddEdge records that prereqID must complete before dependentID runs.
func (g *ActionGraph) AddEdge(prereqID, dependentID string) {
	g.succ[prereqID] = append(g.succ[prereqID], dependentID)
	g.pred[dependentID] = append(g.pred[dependentID], prereqID)
}

// Nodes returns every action in the graph, in insertion order.
func (g *ActionGraph) Nodes() []*Action {
	out := make([]*Action, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Node looks up an action by ID.
func (g *ActionGraph) Node(id string) (*Action, bool) {
	a, ok := g.nodes[id]
	return a, ok
}

// Predecessors returns the IDs of nodes that must complete before id runs.
func (g *ActionGraph) Predecessors(id string) []string { return g.pred[id] }

// Successors returns the IDs of nodes that depend on id.
func (g *ActionGraph) Successors(id string) []string { return g.succ[id] }

// Len reports the number of nodes in the graph.
func (g *ActionGraph) Len() int { return len(g.order) }

// IsEmpty reports whether the graph has no actions to process.
func (g *ActionGraph) IsEmpty() bool { return len(g.order) == 0 }

// Solution is the solver's output, consumed read-only by the engine (spec §3).
type Solution struct {
	ToProcess *ActionGraph
}

// Names returns the set of target package names touched by the solution,
// used by the Applier to decide whether confirmation can be skipped (spec
// §4.1 step 4).
func (s *Solution) Names() map[string]struct{} {
	out := make(map[string]struct{})
	if s == nil || s.ToProcess == nil {
		return out
	}
	for _, n := range s.ToProcess.Nodes() {
		out[n.Target.Name] = struct{}{}
	}
	return out
}

// OutcomeStatus is the three-valued result of running one node (spec §9:
// cancellation is data, not an exception).
type OutcomeStatus int

// Outcome statuses.
const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeFailed
	OutcomeCancelled
)

// Outcome is the per-node result (spec §3).
type Outcome struct {
	Status OutcomeStatus
	Err    error
}

// Succeeded reports whether the outcome represents a successful node.
func (o Outcome) Succeeded() bool { return o.Status == OutcomeSuccess }

// FinalStatus tags the overall result of an apply (spec §3 FinalResult).
type FinalStatus string

// Final statuses.
const (
	StatusOK          FinalStatus = "ok"
	StatusNothingToDo FinalStatus = "nothing_to_do"
	StatusAborted     FinalStatus = "aborted"
	StatusNoSolution  FinalStatus = "no_solution"
	StatusError       FinalStatus = "error"
)

// FinalResult is the engine's terminal outcome (spec §3).
type FinalResult struct {
	Status     FinalStatus
	Actions    []Action // populated for StatusOK
	Successful []Action // populated for StatusError
	Failed     []Action // populated for StatusError
	Remaining  []Action // populated for StatusError
}
