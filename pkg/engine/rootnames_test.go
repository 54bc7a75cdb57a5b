package engine_test

import (
	"testing"

	"github.com/cruciblepm/crucible/pkg/engine"
	"github.com/stretchr/testify/assert"
)

func TestComputeRootInstallNames(t *testing.T) {
	state := engine.NewTransientState(nil, []engine.Package{{Name: "existing-root", Version: "1.0.0"}}, nil)

	tests := []struct {
		name     string
		kind     engine.RequestKind
		req      []string
		expected []string
	}{
		{"install adds requested", engine.RequestInstall, []string{"new-pkg"}, []string{"existing-root", "new-pkg"}},
		{"upgrade keeps existing only", engine.RequestUpgrade, []string{"new-pkg"}, []string{"existing-root"}},
		{"remove starts from empty", engine.RequestRemove, []string{"new-pkg"}, nil},
		{"depends starts from empty", engine.RequestDepends, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ComputeRootInstallNames(state, tt.kind, tt.req)
			var gotNames []string
			for n := range got {
				gotNames = append(gotNames, n)
			}
			assert.ElementsMatch(t, tt.expected, gotNames)
		})
	}
}
