package atom

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// canonicalCacheSize bounds the case-insensitive name lookup cache; an apply
// touching more distinct names than this just pays the scan again, it never
// errors.
const canonicalCacheSize = 512

// Universe resolves a case-insensitive name to its canonically-capitalised
// form, as it would be stored and displayed. It is satisfied by the package
// index / installed-set lookup.
type Universe interface {
	// CanonicalNames returns every name in the universe whose lowercase form
	// equals strings.ToLower(name).
	CanonicalNames(name string) []string
}

// NameCanonicalizer rewrites atom names to their canonical capitalisation,
// memoising lookups for the lifetime of one apply.
type NameCanonicalizer struct {
	universe Universe
	cache    *lru.Cache[string, string]
}

// NewNameCanonicalizer builds a canonicalizer backed by the given universe.
func NewNameCanonicalizer(universe Universe) *NameCanonicalizer {
	cache, _ := lru.New[string, string](canonicalCacheSize)
	return &NameCanonicalizer{universe: universe, cache: cache}
}

// Canonicalize rewrites name to its canonical capitalisation when exactly one
// package matches case-insensitively; on ambiguity or no match, it returns
// the input unchanged (spec §4.7 step 1).
func (c *NameCanonicalizer) Canonicalize(name string) string {
	key := strings.ToLower(name)
	if cached, ok := c.cache.Get(key); ok {
		return cached
	}
	matches := c.universe.CanonicalNames(name)
	result := name
	if len(matches) == 1 {
		result = matches[0]
	}
	c.cache.Add(key, result)
	return result
}

// SanitizeAtoms rewrites every atom's name to its canonical capitalisation.
func SanitizeAtoms(atoms []Atom, universe Universe) []Atom {
	c := NewNameCanonicalizer(universe)
	out := make([]Atom, len(atoms))
	for i, a := range atoms {
		out[i] = Atom{Name: c.Canonicalize(a.Name), Constraint: a.Constraint}
	}
	return out
}

// DiagnosticKind distinguishes why an atom failed the availability check.
type DiagnosticKind string

// Diagnostic kinds for unsatisfied atoms.
const (
	DiagnosticUnknownPackage DiagnosticKind = "unknown_package"
	DiagnosticUnavailableWhy DiagnosticKind = "unavailable_reason"
)

// Diagnostic describes one unsatisfied atom.
type Diagnostic struct {
	Atom   Atom
	Kind   DiagnosticKind
	Reason string
}

// AvailabilitySet reports whether an atom has any match, and, if it has
// matches by name but none satisfying the version constraint, why.
type AvailabilitySet interface {
	// HasName reports whether any package with this name exists in the set.
	HasName(name string) bool
	// Versions returns every known version for the given name.
	Versions(name string) []string
}

// CheckAvailability validates each atom against the availability set
// appropriate for the current mode (spec §4.7 step 2: strict mode uses
// available∪installed, permissive mode uses all∪installed — the caller
// picks which AvailabilitySet to pass in based on that mode).
func CheckAvailability(atoms []Atom, set AvailabilitySet) []Diagnostic {
	var diags []Diagnostic
	for _, a := range atoms {
		if !set.HasName(a.Name) {
			diags = append(diags, Diagnostic{Atom: a, Kind: DiagnosticUnknownPackage, Reason: "no package named " + a.Name})
			continue
		}
		if a.Constraint == nil {
			continue
		}
		matched := false
		for _, v := range set.Versions(a.Name) {
			if a.Matches(v) {
				matched = true
				break
			}
		}
		if !matched {
			diags = append(diags, Diagnostic{
				Atom:   a,
				Kind:   DiagnosticUnavailableWhy,
				Reason: "no version of " + a.Name + " satisfies " + a.String(),
			})
		}
	}
	return diags
}
