package engine

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// CompilerVars maps a compiler package's name to the set of variables its
// manifest defines by assignment (not append) (spec §4.9).
type CompilerVars map[string][]string

// EnvWarner prints, at most once per process, a warning listing process
// environment variables that may interfere with the current compiler (spec
// §4.9): a fixed toolchain-related list (gated on the toolchain package
// being installed) unioned with the vars other installed compilers define
// that the current one doesn't. Only variables actually set in the process
// environment are reported. Repeated calls after the first are no-ops,
// mirroring opam's once-per-run nag rather than once-per-action; the first
// call's accept/decline decision is cached and returned to every caller.
type EnvWarner struct {
	Out io.Writer
	// Confirm, if set, is asked to accept the listed variables; declining
	// makes Warn return false (spec §4.9's "decline -> exit"). Nil means
	// auto-accept (no interactive caller wired).
	Confirm func(vars []string) bool
	// LookupEnv overrides the environment lookup for tests; nil defaults
	// to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	once sync.Once
	ok   bool
}

// Warn computes vars(compiler) for every compiler in installed other than
// current, unions them with toolchainVars (when toolchainInstalled), keeps
// only the ones actually set in the process environment, and if any remain,
// prints them and asks Confirm. Safe to call from multiple goroutines; only
// the first call across the process lifetime has any effect, and every
// call (first or not) returns that first call's accept/decline result.
func (w *EnvWarner) Warn(current string, all CompilerVars, toolchainVars []string, toolchainInstalled bool) bool {
	w.once.Do(func() {
		w.ok = true

		lookup := w.LookupEnv
		if lookup == nil {
			lookup = os.LookupEnv
		}

		candidates := missingVars(current, all)
		if toolchainInstalled {
			candidates = append(candidates, toolchainVars...)
		}
		seen := make(map[string]struct{}, len(candidates))
		var present []string
		for _, v := range candidates {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			if _, isSet := lookup(v); isSet {
				present = append(present, v)
			}
		}
		if len(present) == 0 {
			return
		}
		sort.Strings(present)
		fmt.Fprintln(w.Out, "# The following environment variables are set and may interfere")
		fmt.Fprintln(w.Out, "# with the currently selected compiler:")
		for _, v := range present {
			fmt.Fprintf(w.Out, "#   %s\n", v)
		}

		if w.Confirm != nil {
			w.ok = w.Confirm(present)
		}
	})
	return w.ok
}

// missingVars computes the spec §4.9 difference: union of every other
// compiler's assigned variables, minus the current compiler's own.
func missingVars(current string, all CompilerVars) []string {
	currentSet := make(map[string]struct{}, len(all[current]))
	for _, v := range all[current] {
		currentSet[v] = struct{}{}
	}

	union := make(map[string]struct{})
	for name, vars := range all {
		if name == current {
			continue
		}
		for _, v := range vars {
			union[v] = struct{}{}
		}
	}

	var out []string
	for v := range union {
		if _, ok := currentSet[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
