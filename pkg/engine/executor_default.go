package engine

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cruciblepm/crucible/pkg/artifact"
	"github.com/cruciblepm/crucible/pkg/artifact/database"
	"github.com/cruciblepm/crucible/pkg/download"
	"github.com/cruciblepm/crucible/pkg/hook"
	"github.com/cruciblepm/crucible/pkg/index"
	"github.com/cruciblepm/crucible/pkg/model"
)

// Resolver is the subset of the index manager the default executor needs to
// turn a bare Package into a fetchable, verifiable descriptor. Grounded on
// index.Manager.ResolvePackage rather than the dependency-aware Resolve/Plan
// pair the teacher retrieved alongside it: that pair's methods were declared
// on an index.ManagerImpl receiver that was never itself declared anywhere
// in the package, so the files could not compile and were removed (see
// DESIGN.md); ResolvePackage's priority-ordered, version/os/arch-filtered
// lookup on index.Manager is the one generation of the resolver that is
// actually complete.
type Resolver interface {
	ResolvePackage(name, version, os, arch string) (*index.Package, error)
}

// DefaultExecutor is the concrete PackageActionExecutor wiring the engine to
// crucible's own artifact storage: it downloads through pkg/download,
// extracts through pkg/artifact's archive helpers, runs the package's own
// install hooks through pkg/hook, and records state in
// pkg/artifact/database's installed-package store (spec §6's "out of scope"
// boundary means the actual build step is delegated to the package's own
// hook script, not hardcoded here).
type DefaultExecutor struct {
	Resolver   Resolver
	Downloader download.Manager
	Installed  *database.InstalledManagerImpl
	DBPath     string
	CacheDir   string
	InstallDir string
	OS, Arch   string
	Pinned     map[string]struct{} // packages whose source is locally overridden
}

// DownloadPackage fetches pkg's distributable into the cache, returning
// ok=false on a descriptor-resolution miss rather than an error so the
// Downloader stage can decide separately whether that is fatal (spec §4.2).
func (e *DefaultExecutor) DownloadPackage(ctx context.Context, _ *TransientState, pkg Package) (string, bool, error) {
	desc, err := e.Resolver.ResolvePackage(pkg.Name, pkg.Version, e.OS, e.Arch)
	if err != nil {
		return "", false, nil
	}
	u, err := url.Parse(desc.URL)
	if err != nil {
		return "", false, fmt.Errorf("invalid artifact URL for %s: %w", pkg.String(), err)
	}
	path, err := e.Downloader.Fetch(ctx, download.Item{ID: pkg.String(), URL: u, Checksum: desc.Checksum}, download.Options{Dir: e.CacheDir})
	if err != nil {
		return "", false, fmt.Errorf("failed to download %s: %w", pkg.String(), err)
	}
	return path, true, nil
}

// BuildAndInstall extracts the cached artifact, runs its post-install hook
// if present, and, when installMetadata is set, records it as installed
// (spec §4.4's executor.build_and_install).
func (e *DefaultExecutor) BuildAndInstall(ctx context.Context, _ *TransientState, pkg Package, installMetadata bool) error {
	_, err := e.Resolver.ResolvePackage(pkg.Name, pkg.Version, e.OS, e.Arch)
	if err != nil {
		return NewPackageError("no descriptor available for "+pkg.String(), err)
	}

	cachedPath := filepath.Join(e.CacheDir, pkg.Name+"-"+pkg.Version+".tar.gz")
	if _, statErr := os.Stat(cachedPath); statErr != nil {
		return NewProcessError(ProcessErrorDetail{Code: "missing-artifact"}, fmt.Errorf("artifact not found at %s: %w", cachedPath, statErr))
	}

	extractDir := filepath.Join(e.InstallDir, pkg.Name)
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return NewInternalError("failed to create install directory", err)
	}
	structure, err := artifact.ExtractArtifact(cachedPath, extractDir)
	if err != nil {
		return NewProcessError(ProcessErrorDetail{Code: "extract-failed"}, err)
	}

	hookManager := hook.NewHookManager()
	if err := hook.LoadHooksFromPackageDir(hookManager, extractDir); err != nil {
		return NewPackageError("failed to load install hooks for "+pkg.String(), err)
	}
	hookCtx := hook.HookContext{
		PackageName:    pkg.Name,
		PackageVersion: pkg.Version,
		PackagePath:    cachedPath,
		InstallPath:    extractDir,
	}
	if hookManager.HasHook(hook.PostInstall) {
		if err := hookManager.Execute(hook.PostInstall, hookCtx); err != nil {
			return NewProcessError(ProcessErrorDetail{Code: "post-install-hook"}, err)
		}
	}
	_ = structure

	if installMetadata {
		return e.InstallMetadata(ctx, nil, pkg)
	}
	return nil
}

// InstallMetadata records pkg as installed in the on-disk database, making
// it visible to future invocations. Its InstallationReason is Manual when state's
// installed_roots (already updated by the Scheduler's apply_post_install)
// holds this package's name, Automatic otherwise (SPEC_FULL §4).
func (e *DefaultExecutor) InstallMetadata(_ context.Context, state *TransientState, pkg Package) error {
	reason := model.InstallationReasonAutomatic
	if state != nil && state.IsRoot(pkg.Name) {
		reason = model.InstallationReasonManual
	}
	e.Installed.AddArtifact(&model.InstalledArtifact{
		Name:               pkg.Name,
		Version:            pkg.Version,
		InstalledAt:        time.Now(),
		Status:             model.StatusInstalled,
		InstallationReason: reason,
	})
	if err := e.Installed.SaveDatabase(e.DBPath); err != nil {
		return NewInternalError("failed to persist installed database", err)
	}
	return nil
}

// RemoveAllPackages removes, as a batch, every package PackagesToRemove names
// (spec §4.3), returning exactly the ones that left the installed set.
func (e *DefaultExecutor) RemoveAllPackages(_ context.Context, _ *TransientState, solution *Solution) ([]Package, error) {
	targets := PackagesToRemove(solution)
	var deleted []Package
	for _, pkg := range targets {
		if !e.Installed.IsArtifactInstalled(pkg.Name) {
			continue
		}
		if !e.Installed.RemoveArtifact(pkg.Name) {
			return deleted, NewInternalError("failed to remove "+pkg.String()+" from database", nil)
		}
		deleted = append(deleted, pkg)
	}
	if err := e.Installed.SaveDatabase(e.DBPath); err != nil {
		return deleted, NewInternalError("failed to persist installed database after removal", err)
	}
	return deleted, nil
}

// CleanupPackageArtefacts removes a deleted package's on-disk install
// directory; best-effort, called from the Remover's finalizer.
func (e *DefaultExecutor) CleanupPackageArtefacts(_ context.Context, _ *TransientState, pkg Package) error {
	return os.RemoveAll(filepath.Join(e.InstallDir, pkg.Name))
}

// IsPinned reports whether pkg's source is locally overridden (GLOSSARY).
func (e *DefaultExecutor) IsPinned(pkg Package) bool {
	_, ok := e.Pinned[pkg.Name]
	return ok
}

// ReverseDependents looks up pkg's currently-recorded reverse dependencies
// in the installed-artifact database (SPEC_FULL §4's NoCascade support):
// the ReverseDependencies field of its InstalledArtifact record.
func (e *DefaultExecutor) ReverseDependents(pkg Package) []string {
	art := e.Installed.FindArtifact(pkg.Name)
	if art == nil {
		return nil
	}
	return art.ReverseDependencies
}
