package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cruciblepm/crucible/internal/logger"
	"github.com/cruciblepm/crucible/pkg/artifact/database"
	"github.com/cruciblepm/crucible/pkg/atom"
	"github.com/cruciblepm/crucible/pkg/config"
	"github.com/cruciblepm/crucible/pkg/download"
	"github.com/cruciblepm/crucible/pkg/engine"
	"github.com/cruciblepm/crucible/pkg/index"
	"github.com/spf13/cobra"
)

// NewApplyCmd creates the apply command: the engine-facing counterpart of
// the legacy install command, driving packages through the full
// Downloader -> Remover -> Scheduler -> Classifier pipeline (spec §4.1)
// instead of the orchestrator. It installs a bare package name and
// upgrades or downgrades one already installed, deciding between the two
// the way ToChange's Verb does (spec §3).
func NewApplyCmd() *cobra.Command {
	var (
		assumeYes bool
		showOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "apply PACKAGE...",
		Short: "Install or upgrade packages through the solution application engine",
		Long: `apply resolves each named package against the configured repositories and
drives it through the full download -> remove -> build -> classify pipeline
(spec's solution application engine), confirming the plan unless
--assume-yes is given or the plan exactly matches the requested names.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), args, assumeYes, showOnly)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&showOnly, "show-only", false, "Print the plan and exit without applying it")

	return cmd
}

// NewEngineRemoveCmd creates the remove command: a ToDelete-only plan run
// through the same engine pipeline as apply, with the Remover's
// reverse-dependency cascade safety check (SPEC_FULL §4).
func NewEngineRemoveCmd() *cobra.Command {
	var (
		assumeYes bool
		noCascade bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "remove PACKAGE...",
		Short: "Remove packages through the solution application engine",
		Long: `remove deletes one or more installed packages through the engine's
Remover stage, refusing the batch under --no-cascade if any package still
has a reverse dependent outside the batch (override with --force).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngineRemove(cmd.Context(), args, assumeYes, noCascade, force)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&noCascade, "no-cascade", false, "Refuse to remove a package still required by another")
	cmd.Flags().BoolVar(&force, "force", false, "Override --no-cascade")

	return cmd
}

// engineRig bundles every collaborator the engine needs, built once per
// command invocation the same way internal/cli/uninstall.go loads its own
// config/database pair directly rather than through the broken
// loadConfig/loadIndexManager helper set (see DESIGN.md).
type engineRig struct {
	cfg       *config.Config
	installed *database.InstalledManagerImpl
	executor  *engine.DefaultExecutor
	persister *engine.StatePersister
	audit     *engine.AuditLog
}

func newEngineRig() (*engineRig, error) {
	configPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get default config path: %w", err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	installed := database.NewInstalledDatabase()
	if err := installed.LoadDatabase(cfg.GetDatabasePath()); err != nil {
		return nil, fmt.Errorf("failed to load installed packages database: %w", err)
	}

	resolver := index.NewRepositoryManager(cfg)
	downloader := download.NewManager(cfg.Settings.HTTPTimeout, "crucible")

	executor := &engine.DefaultExecutor{
		Resolver:   resolver,
		Downloader: downloader,
		Installed:  installed,
		DBPath:     cfg.GetDatabasePath(),
		CacheDir:   cfg.GetArtifactCacheDir(),
		InstallDir: cfg.Settings.InstallDir,
		OS:         cfg.Settings.Platform.OS,
		Arch:       cfg.Settings.Platform.Arch,
		Pinned:     map[string]struct{}{},
	}

	statePath := filepath.Join(filepath.Dir(cfg.GetDatabasePath()), "engine-state.json")
	auditPath := filepath.Join(filepath.Dir(cfg.GetDatabasePath()), "engine-audit.jsonl")

	return &engineRig{
		cfg:       cfg,
		installed: installed,
		executor:  executor,
		persister: engine.NewStatePersister(statePath),
		audit:     engine.NewAuditLog(auditPath),
	}, nil
}

// transientStateFromInstalled seeds a TransientState from the on-disk
// artifact database, treating every InstallationReasonManual entry as a
// root the way TransientState.installed_roots is defined (spec §3).
func transientStateFromInstalled(installed *database.InstalledManagerImpl) *engine.TransientState {
	var all, roots []engine.Package
	for _, art := range installed.GetInstalledArtifacts() {
		p := engine.Package{Name: art.Name, Version: art.Version}
		all = append(all, p)
		if art.InstallationReason == "manual" {
			roots = append(roots, p)
		}
	}
	return engine.NewTransientState(all, roots, nil)
}

// resolveTargets parses each argument as an atom and resolves it against
// the repository index, returning the target package and (if already
// installed) its previous version.
func resolveTargets(rig *engineRig, names []string) ([]engine.Action, error) {
	actions := make([]engine.Action, 0, len(names))
	for _, name := range names {
		a, err := atom.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("invalid package reference %q: %w", name, err)
		}
		constraint := ""
		if a.Constraint != nil {
			constraint = string(a.Constraint.Op) + a.Constraint.Version
		}
		desc, err := rig.executor.Resolver.ResolvePackage(a.Name, constraint, rig.cfg.Settings.Platform.OS, rig.cfg.Settings.Platform.Arch)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		target := engine.Package{Name: desc.Name, Version: desc.Version}

		var previous *engine.Package
		if existing := rig.installed.FindArtifact(desc.Name); existing != nil && existing.Status == "installed" {
			previous = &engine.Package{Name: existing.Name, Version: existing.Version}
		}
		actions = append(actions, engine.NewAction(engine.ActionToChange, previous, target))
	}
	return actions, nil
}

func runApply(ctx context.Context, names []string, assumeYes, showOnly bool) error {
	logger.Debug("Resolving apply targets", logger.Fields{"packages": names})

	rig, err := newEngineRig()
	if err != nil {
		return err
	}

	actions, err := resolveTargets(rig, names)
	if err != nil {
		return err
	}

	graph := engine.NewActionGraph()
	for _, a := range actions {
		graph.AddNode(a)
	}

	requested := make(map[string]struct{}, len(names))
	for _, a := range actions {
		requested[a.Target.Name] = struct{}{}
	}

	applier := &engine.Applier{
		Executor:     rig.executor,
		Persister:    rig.persister,
		Audit:        rig.audit,
		Out:          os.Stdout,
		DownloadJobs: rig.cfg.Settings.DownloadJobs,
		BuildJobs:    rig.cfg.Settings.BuildJobs,
	}

	state := transientStateFromInstalled(rig.installed)
	opts := engine.ApplyOptions{
		RequestKind:    engine.RequestInstall,
		RequestedNames: requested,
		AssumeYes:      assumeYes || rig.cfg.Settings.AssumeYes,
		ShowOnly:       showOnly,
		Confirm:        confirmApply,
	}

	result, err := applier.Apply(ctx, state, &engine.Solution{ToProcess: graph}, opts)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}
	logger.Info("Apply finished", logger.Fields{"status": result.Status})
	return finalResultToError(result)
}

func runEngineRemove(ctx context.Context, names []string, assumeYes, noCascade, force bool) error {
	logger.Debug("Resolving remove targets", logger.Fields{"packages": names})

	rig, err := newEngineRig()
	if err != nil {
		return err
	}

	graph := engine.NewActionGraph()
	requested := make(map[string]struct{}, len(names))
	for _, name := range names {
		a, err := atom.Parse(name)
		if err != nil {
			return fmt.Errorf("invalid package reference %q: %w", name, err)
		}
		existing := rig.installed.FindArtifact(a.Name)
		if existing == nil {
			return fmt.Errorf("package %s is not installed", a.Name)
		}
		target := engine.Package{Name: existing.Name, Version: existing.Version}
		graph.AddNode(engine.NewAction(engine.ActionToDelete, nil, target))
		requested[a.Name] = struct{}{}
	}

	applier := &engine.Applier{
		Executor:     rig.executor,
		Persister:    rig.persister,
		Audit:        rig.audit,
		Out:          os.Stdout,
		DownloadJobs: rig.cfg.Settings.DownloadJobs,
		BuildJobs:    rig.cfg.Settings.BuildJobs,
	}

	state := transientStateFromInstalled(rig.installed)
	opts := engine.ApplyOptions{
		RequestKind:    engine.RequestRemove,
		RequestedNames: requested,
		AssumeYes:      assumeYes || rig.cfg.Settings.AssumeYes,
		Confirm:        confirmApply,
		NoCascade:      noCascade,
		Force:          force,
	}

	result, err := applier.Apply(ctx, state, &engine.Solution{ToProcess: graph}, opts)
	if err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	logger.Info("Remove finished", logger.Fields{"status": result.Status})
	return finalResultToError(result)
}

// confirmApply is the engine's Confirmer (spec §4.1 step 4): a simple
// stdin yes/no prompt, the interactive-UI collaborator the engine itself
// never implements (spec §1).
func confirmApply(stats map[engine.ActionKind]int) bool {
	fmt.Printf("Proceed with %d to install/upgrade, %d to recompile, %d to remove? [y/N] ",
		stats[engine.ActionToChange], stats[engine.ActionToRecompile], stats[engine.ActionToDelete])
	var answer string
	_, _ = fmt.Scanln(&answer)
	return answer == "y" || answer == "Y" || answer == "yes"
}

func finalResultToError(result *engine.FinalResult) error {
	switch result.Status {
	case engine.StatusOK, engine.StatusNothingToDo, engine.StatusAborted:
		return nil
	case engine.StatusError:
		return fmt.Errorf("apply finished with %d failed action(s), %d not attempted", len(result.Failed), len(result.Remaining))
	default:
		return fmt.Errorf("apply ended with unexpected status %s", result.Status)
	}
}
