package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cruciblepm/crucible/pkg/errutils"
)

// TransientState is the in-memory snapshot of the three package sets (spec
// §3). All mutation goes through its methods, which take an internal lock,
// so post-install updates from different scheduler workers serialise the
// way spec §5's "shared mutation discipline" requires without forcing
// callers to manage their own mutex.
type TransientState struct {
	mu             sync.Mutex
	installed      map[string]Package
	installedRoots map[string]Package
	reinstall      map[string]Package
	missing        map[string][]string // name -> dependents that still declare it, spec §9 supplemented cascade
}

// NewTransientState builds a TransientState from the given sets (e.g. when
// resuming from a loaded on-disk database).
func NewTransientState(installed, roots, reinstall []Package) *TransientState {
	s := &TransientState{
		installed:      make(map[string]Package, len(installed)),
		installedRoots: make(map[string]Package, len(roots)),
		reinstall:      make(map[string]Package, len(reinstall)),
	}
	for _, p := range installed {
		s.installed[p.Name] = p
	}
	for _, p := range roots {
		s.installedRoots[p.Name] = p
	}
	for _, p := range reinstall {
		s.reinstall[p.Name] = p
	}
	return s
}

// Installed returns a snapshot of the installed set.
func (s *TransientState) Installed() []Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mapValues(s.installed)
}

// InstalledRoots returns a snapshot of the roots subset.
func (s *TransientState) InstalledRoots() []Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mapValues(s.installedRoots)
}

// Reinstall returns a snapshot of the reinstall set.
func (s *TransientState) Reinstall() []Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mapValues(s.reinstall)
}

// IsInstalled reports whether a package with this name is currently believed
// installed.
func (s *TransientState) IsInstalled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.installed[name]
	return ok
}

// IsRoot reports whether a package with this name is currently in
// installed_roots, used by the default executor to project
// InstallationReasonManual/Automatic onto the on-disk artifact database
// (SPEC_FULL §4's installation-reason bookkeeping).
func (s *TransientState) IsRoot(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.installedRoots[name]
	return ok
}

// MarkMissingDependency records that name failed to materialise during this
// apply (its ToChange/ToRecompile node ended cancelled or failed) despite
// one or more dependents in the same solution declaring it as a
// dependency, so a later apply can detect the gap instead of silently
// forgetting it existed (SPEC_FULL §4).
func (s *TransientState) MarkMissingDependency(name string, dependents []string) {
	if len(dependents) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing == nil {
		s.missing = make(map[string][]string)
	}
	s.missing[name] = append(s.missing[name], dependents...)
}

// MissingDependencies returns a snapshot of every name marked missing during
// this apply, keyed to the dependents that still declare it.
func (s *TransientState) MissingDependencies() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.missing))
	for k, v := range s.missing {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// ApplyPostInstall records the post-install state update of spec §4.4:
// installed gains p, reinstall loses p, and installed_roots gains p only if
// its name is in rootNames. It returns nothing; callers flush the state via
// a StatePersister.
func (s *TransientState) ApplyPostInstall(p Package, rootNames map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installed[p.Name] = p
	delete(s.reinstall, p.Name)
	if _, isRoot := rootNames[p.Name]; isRoot {
		s.installedRoots[p.Name] = p
	}
}

// ApplyDelete records the post-delete state update of spec §3's invariants:
// p leaves installed, installed_roots and reinstall.
func (s *TransientState) ApplyDelete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.installed, name)
	delete(s.installedRoots, name)
	delete(s.reinstall, name)
}

// MarkReinstall adds p to the reinstall set (used by callers outside the
// engine, e.g. a "reinstall" request kind, before an apply begins).
func (s *TransientState) MarkReinstall(p Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reinstall[p.Name] = p
}

func mapValues(m map[string]Package) []Package {
	out := make([]Package, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// persistedState is the on-disk JSON document, a sibling of
// pkg/artifact/database's InstalledManagerImpl but shaped for the engine's
// three sets rather than the richer InstalledArtifact record.
type persistedState struct {
	FormatVersion string              `json:"format_version"`
	LastUpdate    time.Time           `json:"last_update"`
	Installed     []Package           `json:"installed"`
	Roots         []string            `json:"installed_roots"`          // names only, a subset of Installed
	Reinstall     []string            `json:"reinstall"`                // names only
	Missing       map[string][]string `json:"missing_dependencies,omitempty"` // name -> dependents, see MarkMissingDependency
}

// StatePersister flushes a TransientState to the state store after each
// successful action (spec §2.3), using the identical atomic
// temp-file-then-rename recipe as pkg/artifact/database.SaveDatabase so a
// kill -9 mid-write never leaves a torn file.
type StatePersister struct {
	path string
	mu   sync.Mutex
}

// NewStatePersister returns a persister writing to the given absolute path.
func NewStatePersister(path string) *StatePersister {
	return &StatePersister{path: path}
}

// Flush serialises the current TransientState to disk atomically.
func (sp *StatePersister) Flush(s *TransientState) (err error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if !filepath.IsAbs(sp.path) {
		return fmt.Errorf("state store path must be absolute: %s: %w", sp.path, errutils.ErrInvalidPath)
	}

	s.mu.Lock()
	missing := make(map[string][]string, len(s.missing))
	for k, v := range s.missing {
		missing[k] = append([]string(nil), v...)
	}
	doc := persistedState{
		FormatVersion: "1",
		LastUpdate:    time.Now(),
		Installed:     mapValues(s.installed),
		Roots:         nameKeys(s.installedRoots),
		Reinstall:     nameKeys(s.reinstall),
		Missing:       missing,
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal engine state: %w", err)
	}

	dir := filepath.Dir(sp.path)
	tmp, err := os.CreateTemp(dir, "crucible-engine-state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temporary state file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary state file: %w", err)
	}
	if err = os.Rename(tmpPath, sp.path); err != nil {
		return fmt.Errorf("failed to rename temporary state file to %s: %w", sp.path, err)
	}
	return nil
}

// Load reads a previously-flushed state document, returning an empty
// TransientState if none exists yet.
func (sp *StatePersister) Load() (*TransientState, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	data, err := os.ReadFile(sp.path)
	if os.IsNotExist(err) {
		return NewTransientState(nil, nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state store %s: %w", sp.path, err)
	}

	var doc persistedState
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state store %s: %w", sp.path, err)
	}

	byName := make(map[string]Package, len(doc.Installed))
	for _, p := range doc.Installed {
		byName[p.Name] = p
	}
	roots := make([]Package, 0, len(doc.Roots))
	for _, name := range doc.Roots {
		if p, ok := byName[name]; ok {
			roots = append(roots, p)
		}
	}
	reinstall := make([]Package, 0, len(doc.Reinstall))
	for _, name := range doc.Reinstall {
		if p, ok := byName[name]; ok {
			reinstall = append(reinstall, p)
		}
	}
	loaded := NewTransientState(doc.Installed, roots, reinstall)
	if len(doc.Missing) > 0 {
		loaded.missing = make(map[string][]string, len(doc.Missing))
		for k, v := range doc.Missing {
			loaded.missing[k] = append([]string(nil), v...)
		}
	}
	return loaded, nil
}

func nameKeys(m map[string]Package) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
