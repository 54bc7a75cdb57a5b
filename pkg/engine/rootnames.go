package engine

// RequestKind is the kind of user request driving this apply, used to
// derive RootInstallNames (spec §4.8).
type RequestKind string

// Request kinds.
const (
	RequestInit      RequestKind = "init"
	RequestInstall   RequestKind = "install"
	RequestImport    RequestKind = "import"
	RequestSwitch    RequestKind = "switch"
	RequestUpgrade   RequestKind = "upgrade"
	RequestReinstall RequestKind = "reinstall"
	RequestDepends   RequestKind = "depends"
	RequestRemove    RequestKind = "remove"
)

// ComputeRootInstallNames derives the set of names that should be recorded
// as installed_roots after this apply (spec §4.8): it starts from the
// current installed roots and unions in request-kind-dependent additions,
// except for Depends/Remove which start from the empty set instead of the
// current roots.
func ComputeRootInstallNames(state *TransientState, kind RequestKind, requestedNames []string) map[string]struct{} {
	out := make(map[string]struct{})

	switch kind {
	case RequestDepends, RequestRemove:
		// Start from ∅, not from current roots.
	default:
		for _, p := range state.InstalledRoots() {
			out[p.Name] = struct{}{}
		}
	}

	switch kind {
	case RequestInit, RequestInstall, RequestImport, RequestSwitch:
		for _, n := range requestedNames {
			out[n] = struct{}{}
		}
	case RequestUpgrade, RequestReinstall:
		// No additions.
	case RequestDepends, RequestRemove:
		// No additions; starts from ∅ per above.
	}

	return out
}
