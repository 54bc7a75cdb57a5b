package engine

import (
	"context"
	"fmt"
)

// RemovalStatus tags the outcome of the Remover's batch removal (spec §4.3).
type RemovalStatus int

// Removal statuses.
const (
	RemovalSuccessful RemovalStatus = iota
	RemovalException
)

// Remover removes, as one batch, every package the plan replaces, recompiles
// or deletes, before any install runs (spec §4.3).
type Remover struct {
	Executor PackageActionExecutor

	// NoCascade, when set, refuses the whole batch if any ToDelete target
	// still has a reverse dependent that this solution is not also
	// deleting (SPEC_FULL §4). Force overrides NoCascade.
	NoCascade bool
	Force     bool
}

// removalOutcome is the Remover's result: either the batch succeeded (in
// which case deleted holds what actually left the installed set, for the
// finalizer and for TransientState bookkeeping), or it failed, in which case
// classified holds the pre-computed FinalResult and the Scheduler must be
// skipped entirely.
type removalOutcome struct {
	status     RemovalStatus
	deleted    []Package
	classified *FinalResult
	finalizer  func(ctx context.Context)
}

// Run executes the removal batch and updates state on success (spec §4.3).
func (r *Remover) Run(ctx context.Context, state *TransientState, solution *Solution) removalOutcome {
	if err := r.checkCascade(solution); err != nil {
		return removalOutcome{
			status:     RemovalException,
			classified: classifyAfterFailedRemoval(solution, state),
		}
	}

	deleted, err := r.Executor.RemoveAllPackages(ctx, state, solution)
	for _, p := range deleted {
		state.ApplyDelete(p.Name)
	}
	if err != nil {
		return removalOutcome{
			status:     RemovalException,
			classified: classifyAfterFailedRemoval(solution, state),
		}
	}

	finalizer := func(ctx context.Context) {
		for _, p := range deleted {
			if r.Executor.IsPinned(p) {
				continue
			}
			_ = r.Executor.CleanupPackageArtefacts(ctx, state, p)
		}
	}

	return removalOutcome{status: RemovalSuccessful, deleted: deleted, finalizer: finalizer}
}

// checkCascade implements SPEC_FULL §4's NoCascade option: if NoCascade is
// set and Force is not, every ToDelete target must have no reverse
// dependent outside this same solution's own deletions, or the whole batch
// is refused before anything is removed.
func (r *Remover) checkCascade(solution *Solution) error {
	if !r.NoCascade || r.Force {
		return nil
	}
	deleting := make(map[string]struct{})
	for _, n := range solution.ToProcess.Nodes() {
		if n.Kind == ActionToDelete {
			deleting[n.Target.Name] = struct{}{}
		}
	}
	for _, n := range solution.ToProcess.Nodes() {
		if n.Kind != ActionToDelete {
			continue
		}
		for _, dependent := range r.Executor.ReverseDependents(n.Target) {
			if _, alsoDeleted := deleting[dependent]; alsoDeleted {
				continue
			}
			return fmt.Errorf("%s is still required by %s", n.Target.Name, dependent)
		}
	}
	return nil
}

// classifyAfterFailedRemoval implements spec §4.3's classification-without-
// running-installs rule: a ToDelete is successful if its target is no longer
// installed; a ToChange/ToRecompile is failed if its previous/current
// version is no longer installed (the old version got removed but the new
// one was never built); everything else is remaining.
//
// This is spec §9's second open question, resolved as documented in
// DESIGN.md: intentionally narrower than "report everything unperformed as
// remaining", because silently reporting a package whose old version is
// gone and whose new version never arrived as a mere cancellation would
// hide a real state regression.
func classifyAfterFailedRemoval(solution *Solution, state *TransientState) *FinalResult {
	var successful, failed, remaining []Action
	for _, n := range solution.ToProcess.Nodes() {
		switch n.Kind {
		case ActionToDelete:
			if !state.IsInstalled(n.Target.Name) {
				successful = append(successful, *n)
			} else {
				remaining = append(remaining, *n)
			}
		case ActionToChange:
			if n.Previous != nil && !state.IsInstalled(n.Previous.Name) {
				failed = append(failed, *n)
			} else {
				remaining = append(remaining, *n)
			}
		case ActionToRecompile:
			if !state.IsInstalled(n.Target.Name) {
				failed = append(failed, *n)
			} else {
				remaining = append(remaining, *n)
			}
		}
	}
	return &FinalResult{Status: StatusError, Successful: successful, Failed: failed, Remaining: remaining}
}
