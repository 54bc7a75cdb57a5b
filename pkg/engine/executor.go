//go:generate mockgen -destination=./enginemocks/mock_executor.go -package=enginemocks . PackageActionExecutor

package engine

import "context"

// PackageActionExecutor is the external collaborator that actually
// downloads, builds, installs and removes a single package (spec §1, §6).
// Everything about how a package gets built is out of scope for the engine;
// the engine only needs this contract.
type PackageActionExecutor interface {
	// BuildAndInstall builds and installs a single package. When
	// installMetadata is true the executor also makes the package visible
	// to future invocations (spec §4.4's apply_post_install last step).
	BuildAndInstall(ctx context.Context, state *TransientState, pkg Package, installMetadata bool) error

	// RemoveAllPackages removes, as a single batch, every package the
	// solution will replace, recompile or delete (spec §4.3). It returns the
	// set of packages actually deleted from disk.
	RemoveAllPackages(ctx context.Context, state *TransientState, solution *Solution) (deleted []Package, err error)

	// CleanupPackageArtefacts performs best-effort post-deletion cleanup of
	// a package's on-disk artefacts; called by a finalizer after
	// classification (spec §4.3).
	CleanupPackageArtefacts(ctx context.Context, state *TransientState, pkg Package) error

	// InstallMetadata makes pkg visible to future invocations.
	InstallMetadata(ctx context.Context, state *TransientState, pkg Package) error

	// DownloadPackage fetches pkg's source, returning ok=false on a cache
	// miss rather than an error (spec §4.2's Option<artifact>).
	DownloadPackage(ctx context.Context, state *TransientState, pkg Package) (artifactPath string, ok bool, err error)

	// IsPinned reports whether pkg's source is locally overridden; pinned
	// packages skip cleanup-on-delete (GLOSSARY).
	IsPinned(pkg Package) bool

	// ReverseDependents returns the names of currently-installed packages
	// that declare pkg as a dependency, used by the Remover's cascade-safety
	// check (SPEC_FULL §4's NoCascade/Force reverse-dependency option).
	ReverseDependents(pkg Package) []string
}

// SourcesNeeded returns every package the solution's Downloader stage must
// fetch: ToChange and ToRecompile targets, but not ToDelete targets (spec
// §4.2).
func SourcesNeeded(solution *Solution) []Package {
	if solution == nil || solution.ToProcess == nil {
		return nil
	}
	var out []Package
	for _, n := range solution.ToProcess.Nodes() {
		switch n.Kind {
		case ActionToChange, ActionToRecompile:
			out = append(out, n.Target)
		}
	}
	return out
}

// PackagesToRemove returns every package the Remover stage must remove
// first: the previous version of every ToChange, every ToRecompile's current
// version, and every ToDelete target (spec §4.3).
func PackagesToRemove(solution *Solution) []Package {
	if solution == nil || solution.ToProcess == nil {
		return nil
	}
	var out []Package
	for _, n := range solution.ToProcess.Nodes() {
		switch n.Kind {
		case ActionToChange:
			if n.Previous != nil {
				out = append(out, *n.Previous)
			}
		case ActionToRecompile:
			out = append(out, n.Target)
		case ActionToDelete:
			out = append(out, n.Target)
		}
	}
	return out
}
