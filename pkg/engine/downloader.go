package engine

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/cruciblepm/crucible/pkg/logger"
)

// CacheWarmer performs a best-effort warm-up of the HTTP download cache for
// a package whose source is a remote repository and which is not locally
// pinned (spec §4.2). It is optional: a Downloader with no CacheWarmer set
// simply skips the step.
type CacheWarmer interface {
	WarmCache(ctx context.Context, pkg Package) error
}

// Downloader is the pre-stage that fetches sources for every package the
// plan will touch, with bounded parallelism (spec §4.2). It runs strictly
// before the Remover and the Scheduler (spec §5).
type Downloader struct {
	Executor    PackageActionExecutor
	CacheWarmer CacheWarmer // optional
	Jobs        int         // download_jobs; <=0 means sequential
	DryRun      bool        // in dry-run/fake mode a cache miss does not fail the apply
}

// downloadResult pairs a package with its fetch outcome.
type downloadResult struct {
	pkg Package
	ok  bool
	err error
}

// Run fetches every package SourcesNeeded(solution) lists. A cache miss
// (ok=false) short-circuits to a failed apply unless DryRun is set; any
// fetch error does the same. Both cases return the aggregated errors as one
// multierror, per spec §4.2's "Error([], [], [])" contract — no
// action has been attempted yet, so there is nothing to classify.
func (d *Downloader) Run(ctx context.Context, state *TransientState, solution *Solution) error {
	packages := SourcesNeeded(solution)
	if len(packages) == 0 {
		return nil
	}

	d.warmCache(ctx, packages)

	results := d.fetchAll(ctx, state, packages)

	var multiErr *multierror.Error
	for _, r := range results {
		if r.err != nil {
			multiErr = multierror.Append(multiErr, r.err)
			continue
		}
		if !r.ok && !d.DryRun {
			multiErr = multierror.Append(multiErr, NewInternalError("no source available for "+r.pkg.String(), nil))
		}
	}
	if multiErr != nil {
		return multiErr.ErrorOrNil()
	}
	return nil
}

// warmCache best-effort primes the HTTP cache for eligible packages; any
// failure is logged at debug and the apply proceeds (spec §9 open question,
// resolved: degrade silently, don't switch to a distinct offline mode).
func (d *Downloader) warmCache(ctx context.Context, packages []Package) {
	if d.CacheWarmer == nil {
		return
	}
	for _, p := range packages {
		if err := d.CacheWarmer.WarmCache(ctx, p); err != nil {
			logger.Debug("cache warm-up failed, continuing", logrus.Fields{"package": p.String(), "error": err.Error()})
		}
	}
}

// fetchAll runs a bounded worker pool over packages, the same channel +
// WaitGroup shape as pkg/download/manager.go's runDownloadWorkers.
func (d *Downloader) fetchAll(ctx context.Context, state *TransientState, packages []Package) []downloadResult {
	jobs := d.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	results := make([]downloadResult, len(packages))
	tasks := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				pkg := packages[idx]
				_, ok, err := d.Executor.DownloadPackage(ctx, state, pkg)
				results[idx] = downloadResult{pkg: pkg, ok: ok, err: err}
			}
		}()
	}

	for i := range packages {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	return results
}
