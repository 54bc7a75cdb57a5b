package engine_test

import (
	"bytes"
	"testing"

	"github.com/cruciblepm/crucible/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFromSet(set map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := set[key]
		return v, ok
	}
}

func TestEnvWarner_Warn_PrintsMissingSetVars(t *testing.T) {
	var buf bytes.Buffer
	w := &engine.EnvWarner{Out: &buf, LookupEnv: lookupFromSet(map[string]string{"OCAML_TOPLEVEL_PATH": "/x"})}

	ok := w.Warn("ocaml-base", engine.CompilerVars{
		"ocaml-base":   {"CAML_LD_LIBRARY_PATH"},
		"ocaml-system": {"CAML_LD_LIBRARY_PATH", "OCAML_TOPLEVEL_PATH"},
	}, nil, false)

	assert.True(t, ok)
	assert.Contains(t, buf.String(), "OCAML_TOPLEVEL_PATH")
}

func TestEnvWarner_Warn_NoOpWhenNothingMissing(t *testing.T) {
	var buf bytes.Buffer
	w := &engine.EnvWarner{Out: &buf, LookupEnv: lookupFromSet(nil)}

	w.Warn("only-compiler", engine.CompilerVars{
		"only-compiler": {"SOME_VAR"},
	}, nil, false)

	assert.Empty(t, buf.String())
}

func TestEnvWarner_Warn_NoOpWhenMissingVarNotSetInEnv(t *testing.T) {
	var buf bytes.Buffer
	w := &engine.EnvWarner{Out: &buf, LookupEnv: lookupFromSet(nil)}

	w.Warn("current", engine.CompilerVars{
		"current": {},
		"other":   {"MISSING_VAR"},
	}, nil, false)

	assert.Empty(t, buf.String())
}

func TestEnvWarner_Warn_IncludesToolchainVarsWhenInstalled(t *testing.T) {
	var buf bytes.Buffer
	w := &engine.EnvWarner{Out: &buf, LookupEnv: lookupFromSet(map[string]string{"CC": "gcc"})}

	w.Warn("current", engine.CompilerVars{"current": {}}, []string{"CC"}, true)

	assert.Contains(t, buf.String(), "CC")
}

func TestEnvWarner_Warn_OmitsToolchainVarsWhenNotInstalled(t *testing.T) {
	var buf bytes.Buffer
	w := &engine.EnvWarner{Out: &buf, LookupEnv: lookupFromSet(map[string]string{"CC": "gcc"})}

	w.Warn("current", engine.CompilerVars{"current": {}}, []string{"CC"}, false)

	assert.Empty(t, buf.String())
}

func TestEnvWarner_Warn_DeclineReturnsFalse(t *testing.T) {
	var buf bytes.Buffer
	w := &engine.EnvWarner{
		Out:       &buf,
		LookupEnv: lookupFromSet(map[string]string{"MISSING_VAR": "1"}),
		Confirm:   func(vars []string) bool { return false },
	}

	ok := w.Warn("current", engine.CompilerVars{"current": {}, "other": {"MISSING_VAR"}}, nil, false)
	require.False(t, ok)
}

func TestEnvWarner_Warn_OnlyFiresOnceAndCachesDecision(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	w := &engine.EnvWarner{
		Out:       &buf,
		LookupEnv: lookupFromSet(map[string]string{"MISSING_VAR": "1"}),
		Confirm:   func(vars []string) bool { calls++; return true },
	}
	vars := engine.CompilerVars{
		"current": {},
		"other":   {"MISSING_VAR"},
	}

	ok1 := w.Warn("current", vars, nil, false)
	first := buf.String()
	assert.Contains(t, first, "MISSING_VAR")

	ok2 := w.Warn("current", vars, nil, false)
	assert.Equal(t, first, buf.String())
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, 1, calls)
}
