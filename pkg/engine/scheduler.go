package engine

import (
	"context"
	"sync"
)

// Scheduler walks the ActionGraph in topological order, running
// build-and-install for each node under a worker pool bounded by Jobs,
// propagating cancellation to descendants of failed nodes (spec §4.4).
type Scheduler struct {
	Executor  PackageActionExecutor
	Jobs      int  // build_jobs; <=0 means sequential
	DryRun    bool // suppress install_metadata (spec §4.4's apply_post_install)
	RootNames map[string]struct{}

	// OnNodeDone, if set, is invoked synchronously from the coordinator
	// (never concurrently) after each node completes, letting the caller
	// drive post-install messaging (spec §4.6) without the Scheduler
	// knowing about manifests or filters.
	OnNodeDone func(node Action, outcome Outcome)
}

// nodeState tracks a node's readiness inside one Run call.
type nodeState struct {
	remaining int // count of predecessors not yet finished
}

type completion struct {
	id      string
	outcome Outcome
}

// Run executes the graph, returning the outcome of every node keyed by ID.
// A single coordinator goroutine hands ready nodes to a bounded worker pool
// and folds results back, so no two workers ever read or write the same
// node's predecessor outcomes concurrently (spec §5's single-writer
// discipline extended to scheduling state).
func (s *Scheduler) Run(ctx context.Context, state *TransientState, solution *Solution) map[string]Outcome {
	graph := solution.ToProcess
	outcomes := make(map[string]Outcome, graph.Len())

	jobs := s.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	nodeStates := make(map[string]*nodeState, graph.Len())
	for _, n := range graph.Nodes() {
		nodeStates[n.ID] = &nodeState{remaining: len(graph.Predecessors(n.ID))}
	}

	ready := make(chan string, graph.Len())
	done := make(chan completion, graph.Len())

	var wg sync.WaitGroup
	sem := make(chan struct{}, jobs)

	pending := graph.Len()
	for _, n := range graph.Nodes() {
		if nodeStates[n.ID].remaining == 0 {
			ready <- n.ID
		}
	}

	dispatch := func(id string) {
		node, _ := graph.Node(id)
		preds := graph.Predecessors(id)
		predOutcomes := make([]Outcome, len(preds))
		for i, p := range preds {
			predOutcomes[i] = outcomes[p]
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			outcome := s.execute(ctx, state, *node, predOutcomes)
			done <- completion{id: id, outcome: outcome}
		}()
	}

	finished := make(chan struct{})
	go func() {
		for pending > 0 {
			select {
			case id := <-ready:
				dispatch(id)
			case c := <-done:
				outcomes[c.id] = c.outcome
				pending--
				node, _ := graph.Node(c.id)
				if !c.outcome.Succeeded() && (node.Kind == ActionToChange || node.Kind == ActionToRecompile) {
					markMissingDependents(state, graph, *node)
				}
				if s.OnNodeDone != nil {
					s.OnNodeDone(*node, c.outcome)
				}
				for _, succID := range graph.Successors(c.id) {
					ns := nodeStates[succID]
					ns.remaining--
					if ns.remaining == 0 {
						ready <- succID
					}
				}
			}
		}
		close(ready)
		close(done)
		// wg.Add only ever happens above, on this same goroutine, so by the
		// time pending reaches 0 every dispatched worker has already been
		// accounted for; Wait here cannot race with a later Add.
		wg.Wait()
		close(finished)
	}()

	<-finished
	return outcomes
}

// execute runs a single node's job (spec §4.4's `job` pseudocode): cancelled
// if any predecessor did not succeed, otherwise dispatched to the executor.
// Both the dispatch-time read of outcomes and this call happen only on the
// coordinator goroutine or on a worker holding predecessor outcomes already
// copied by value, so no lock is needed here.
func (s *Scheduler) execute(ctx context.Context, state *TransientState, node Action, predecessors []Outcome) Outcome {
	for _, p := range predecessors {
		if !p.Succeeded() {
			return Outcome{Status: OutcomeCancelled}
		}
	}

	switch node.Kind {
	case ActionToChange, ActionToRecompile:
		if err := s.Executor.BuildAndInstall(ctx, state, node.Target, false); err != nil {
			return Outcome{Status: OutcomeFailed, Err: AsActionError(err)}
		}
		s.applyPostInstall(ctx, state, node.Target)
		return Outcome{Status: OutcomeSuccess}
	case ActionToDelete:
		// Already removed by the Remover stage; nothing left to do here.
		return Outcome{Status: OutcomeSuccess}
	default:
		return Outcome{Status: OutcomeFailed, Err: NewInternalError("unknown action kind", nil)}
	}
}

// markMissingDependents records a StatusMissing-style placeholder (SPEC_FULL
// §4's supplemented feature) for a node that ended cancelled or failed: any
// graph successor that named this node's package as a prerequisite is a
// "declared dependent" whose dependency never materialised this apply.
func markMissingDependents(state *TransientState, graph *ActionGraph, node Action) {
	succIDs := graph.Successors(node.ID)
	if len(succIDs) == 0 {
		return
	}
	dependents := make([]string, 0, len(succIDs))
	for _, succID := range succIDs {
		if succ, ok := graph.Node(succID); ok {
			dependents = append(dependents, succ.Target.Name)
		}
	}
	state.MarkMissingDependency(node.Target.Name, dependents)
}

// applyPostInstall is spec §4.4's apply_post_install: update TransientState
// and, unless dry-run, make the package visible to future invocations.
func (s *Scheduler) applyPostInstall(ctx context.Context, state *TransientState, p Package) {
	state.ApplyPostInstall(p, s.RootNames)
	if !s.DryRun {
		_ = s.Executor.InstallMetadata(ctx, state, p)
	}
}
