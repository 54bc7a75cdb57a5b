// Package atom implements atom parsing and version-constraint matching for
// the solution application engine. An atom is a package name with an
// optional version constraint, the unit the solver and the engine's
// sanitisation step both operate on.
package atom

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/cruciblepm/crucible/pkg/errutils"
)

// RelOp is a version comparison operator.
type RelOp string

// Supported relational operators.
const (
	OpEQ RelOp = "="
	OpNE RelOp = "!="
	OpLT RelOp = "<"
	OpLE RelOp = "<="
	OpGT RelOp = ">"
	OpGE RelOp = ">="
)

// Constraint pairs a relational operator with a version.
type Constraint struct {
	Op      RelOp
	Version string
}

// Atom is a package name with an optional version constraint.
type Atom struct {
	Name       string
	Constraint *Constraint
}

// String renders the atom the way a user would type it, e.g. "foo>=1.2".
func (a Atom) String() string {
	if a.Constraint == nil {
		return a.Name
	}
	return fmt.Sprintf("%s%s%s", a.Name, a.Constraint.Op, a.Constraint.Version)
}

// Matches reports whether the given version satisfies the atom's constraint.
// An atom with no constraint matches any version.
func (a Atom) Matches(candidate string) bool {
	if a.Constraint == nil {
		return true
	}
	cv, err := version.NewVersion(candidate)
	if err != nil {
		return false
	}
	tv, err := version.NewVersion(a.Constraint.Version)
	if err != nil {
		return false
	}
	switch a.Constraint.Op {
	case OpEQ:
		return cv.Equal(tv)
	case OpNE:
		return !cv.Equal(tv)
	case OpLT:
		return cv.LessThan(tv)
	case OpLE:
		return cv.LessThanOrEqual(tv)
	case OpGT:
		return cv.GreaterThan(tv)
	case OpGE:
		return cv.GreaterThanOrEqual(tv)
	default:
		return false
	}
}

// Parse parses a single atom of the form "name", "name=1.2", "name>=1.2", etc.
func Parse(s string) (Atom, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Atom{}, fmt.Errorf("empty atom: %w", errutils.ErrValidation)
	}
	for _, op := range []RelOp{OpGE, OpLE, OpNE, OpEQ, OpGT, OpLT} {
		if idx := strings.Index(s, string(op)); idx > 0 {
			return Atom{
				Name: strings.TrimSpace(s[:idx]),
				Constraint: &Constraint{
					Op:      op,
					Version: strings.TrimSpace(s[idx+len(op):]),
				},
			}, nil
		}
	}
	return Atom{Name: s}, nil
}

// CompareVersions orders two version strings, returning -1, 0 or 1. Invalid
// versions sort as lower than any valid version, matching the engine's need
// to decide ToChange's upgrade/downgrade direction defensively.
func CompareVersions(a, b string) int {
	av, aerr := version.NewVersion(a)
	bv, berr := version.NewVersion(b)
	switch {
	case aerr != nil && berr != nil:
		return strings.Compare(a, b)
	case aerr != nil:
		return -1
	case berr != nil:
		return 1
	default:
		return av.Compare(bv)
	}
}
