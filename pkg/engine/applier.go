package engine

import (
	"context"
	"fmt"
	"io"
)

// Confirmer asks the user to confirm a plan; it is the caller's UI, not the
// engine's (spec §1 lists interactive UI as an external collaborator).
type Confirmer func(stats map[ActionKind]int) bool

// ApplyOptions controls one Applier.Apply call (spec §4.1).
type ApplyOptions struct {
	RequestKind     RequestKind
	RequestedNames  map[string]struct{}
	AssumeYes       bool
	ShowOnly        bool
	ExternalTagMode bool
	ExternalTags    func(stats map[ActionKind]int) []string // populated only in external-tags mode
	Confirm         Confirmer

	// NoCascade/Force gate the Remover's reverse-dependency safety check
	// (SPEC_FULL §4).
	NoCascade bool
	Force     bool
}

// Applier is the engine's entry point (spec §4.1): it previews a solution,
// confirms it, and drives Downloader -> Remover -> Scheduler -> Classifier.
type Applier struct {
	Executor  PackageActionExecutor
	Persister *StatePersister
	Audit     *AuditLog
	Out       io.Writer

	// WarnEnv, if set, is invoked once before the pipeline runs (spec §4.1
	// step 6); callers typically back it with an EnvWarner.Warn closure
	// carrying the installed compiler set the engine itself never resolves.
	// A false return means the user declined the warning (spec §4.9's
	// "decline -> exit"): Apply aborts without running the pipeline.
	WarnEnv func() bool

	DownloadJobs int
	BuildJobs    int
	CacheWarmer  CacheWarmer
	Messages     map[string]PostInstallMessage // keyed by package name, spec §4.6
}

// Apply runs the full pipeline against solution, mutating state and
// persisting it as actions complete (spec §4.1's seven-step flow).
func (a *Applier) Apply(ctx context.Context, state *TransientState, solution *Solution, opts ApplyOptions) (*FinalResult, error) {
	if solution == nil || solution.ToProcess == nil || solution.ToProcess.IsEmpty() {
		return &FinalResult{Status: StatusNothingToDo}, nil
	}

	stats := actionStats(solution.ToProcess)
	a.renderPreview(stats, opts)

	if opts.ExternalTagMode {
		if opts.ExternalTags != nil {
			for _, tag := range opts.ExternalTags(stats) {
				fmt.Fprintln(a.Out, tag)
			}
		}
		return &FinalResult{Status: StatusAborted}, nil
	}

	if !opts.AssumeYes && !namesMatch(solution, opts.RequestedNames) {
		if opts.Confirm == nil || !opts.Confirm(stats) {
			return &FinalResult{Status: StatusAborted}, nil
		}
	}

	if opts.ShowOnly {
		return &FinalResult{Status: StatusAborted}, nil
	}

	if a.WarnEnv != nil && !a.WarnEnv() {
		return &FinalResult{Status: StatusAborted}, nil
	}

	return a.parallelApply(ctx, state, solution, opts)
}

// parallelApply is spec §4.1 step 7: Downloader -> Remover -> Scheduler ->
// Classifier, in that order, persisting state after every stage that
// mutates it.
func (a *Applier) parallelApply(ctx context.Context, state *TransientState, solution *Solution, opts ApplyOptions) (*FinalResult, error) {
	downloader := &Downloader{Executor: a.Executor, CacheWarmer: a.CacheWarmer, Jobs: a.DownloadJobs}
	if err := downloader.Run(ctx, state, solution); err != nil {
		return &FinalResult{Status: StatusError}, err
	}

	remover := &Remover{Executor: a.Executor, NoCascade: opts.NoCascade, Force: opts.Force}
	removal := remover.Run(ctx, state, solution)
	if a.Persister != nil {
		_ = a.Persister.Flush(state)
	}
	if removal.status == RemovalException {
		a.reportAndAudit(removal.classified, solution, nil)
		return removal.classified, nil
	}
	if removal.finalizer != nil {
		defer removal.finalizer(ctx)
	}

	names := make([]string, 0, len(opts.RequestedNames))
	for n := range opts.RequestedNames {
		names = append(names, n)
	}
	rootNames := ComputeRootInstallNames(state, opts.RequestKind, names)
	scheduler := &Scheduler{
		Executor:  a.Executor,
		Jobs:      a.BuildJobs,
		RootNames: rootNames,
		OnNodeDone: func(node Action, outcome Outcome) {
			LogOutcome(node, outcome)
			if a.Persister != nil {
				_ = a.Persister.Flush(state)
			}
			if msg, ok := a.Messages[node.Target.Name]; ok {
				(&Messenger{Out: a.Out}).Render(node.Target, msg, outcome)
			}
		},
	}
	outcomes := scheduler.Run(ctx, state, solution)

	result := Classify(solution.ToProcess, outcomes)
	a.reportAndAudit(result, solution, outcomes)
	return result, nil
}

func (a *Applier) reportAndAudit(result *FinalResult, solution *Solution, outcomes map[string]Outcome) {
	(&Reporter{Out: a.Out}).Report(result, outcomes)
	if a.Audit == nil {
		return
	}
	_ = a.Audit.LogSolution(solution)
	for _, n := range result.Failed {
		_ = a.Audit.LogFailure(n.Target, AsActionError(outcomes[n.ID].Err))
	}
}

// renderPreview writes the per-kind action counts (spec §4.1 step 2), unless
// external-tags mode is active (its own output replaces the preview).
func (a *Applier) renderPreview(stats map[ActionKind]int, opts ApplyOptions) {
	if opts.ExternalTagMode {
		return
	}
	fmt.Fprintf(a.Out, "%d to install/upgrade, %d to recompile, %d to remove\n",
		stats[ActionToChange], stats[ActionToRecompile], stats[ActionToDelete])
}

func actionStats(graph *ActionGraph) map[ActionKind]int {
	stats := make(map[ActionKind]int)
	for _, n := range graph.Nodes() {
		stats[n.Kind]++
	}
	return stats
}

// namesMatch reports whether the solution touches exactly requestedNames,
// the condition under which confirmation is skipped (spec §4.1 step 4).
func namesMatch(solution *Solution, requestedNames map[string]struct{}) bool {
	names := solution.Names()
	if len(names) != len(requestedNames) {
		return false
	}
	for n := range requestedNames {
		if _, ok := names[n]; !ok {
			return false
		}
	}
	return true
}
