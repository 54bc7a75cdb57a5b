package engine_test

import (
	"path/filepath"
	"testing"

	"github.com/cruciblepm/crucible/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransientState_ApplyPostInstall(t *testing.T) {
	state := engine.NewTransientState(nil, nil, []engine.Package{{Name: "foo", Version: "1.0.0"}})

	roots := map[string]struct{}{"foo": {}}
	state.ApplyPostInstall(engine.Package{Name: "foo", Version: "1.0.0"}, roots)

	assert.True(t, state.IsInstalled("foo"))
	assert.Empty(t, state.Reinstall())
	require.Len(t, state.InstalledRoots(), 1)
	assert.Equal(t, "foo", state.InstalledRoots()[0].Name)
}

func TestTransientState_ApplyPostInstall_NotRoot(t *testing.T) {
	state := engine.NewTransientState(nil, nil, nil)
	state.ApplyPostInstall(engine.Package{Name: "bar", Version: "2.0.0"}, map[string]struct{}{})

	assert.True(t, state.IsInstalled("bar"))
	assert.Empty(t, state.InstalledRoots())
}

func TestTransientState_IsRoot(t *testing.T) {
	state := engine.NewTransientState(nil, []engine.Package{{Name: "foo", Version: "1.0.0"}}, nil)

	assert.True(t, state.IsRoot("foo"))
	assert.False(t, state.IsRoot("bar"))
}

func TestTransientState_MarkMissingDependency(t *testing.T) {
	state := engine.NewTransientState(nil, nil, nil)

	state.MarkMissingDependency("libfoo", []string{"app-a"})
	state.MarkMissingDependency("libfoo", []string{"app-b"})
	state.MarkMissingDependency("untouched", nil)

	missing := state.MissingDependencies()
	assert.ElementsMatch(t, []string{"app-a", "app-b"}, missing["libfoo"])
	_, ok := missing["untouched"]
	assert.False(t, ok)
}

func TestTransientState_ApplyDelete(t *testing.T) {
	state := engine.NewTransientState(
		[]engine.Package{{Name: "foo", Version: "1.0.0"}},
		[]engine.Package{{Name: "foo", Version: "1.0.0"}},
		nil,
	)

	state.ApplyDelete("foo")

	assert.False(t, state.IsInstalled("foo"))
	assert.Empty(t, state.InstalledRoots())
}

func TestStatePersister_FlushAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	persister := engine.NewStatePersister(path)

	state := engine.NewTransientState(
		[]engine.Package{{Name: "foo", Version: "1.0.0"}},
		[]engine.Package{{Name: "foo", Version: "1.0.0"}},
		[]engine.Package{{Name: "bar", Version: "0.1.0"}},
	)

	state.MarkMissingDependency("libfoo", []string{"app-a"})

	require.NoError(t, persister.Flush(state))

	loaded, err := persister.Load()
	require.NoError(t, err)
	assert.True(t, loaded.IsInstalled("foo"))
	require.Len(t, loaded.InstalledRoots(), 1)
	require.Len(t, loaded.Reinstall(), 1)
	assert.Equal(t, []string{"app-a"}, loaded.MissingDependencies()["libfoo"])
}

func TestStatePersister_Load_MissingFile(t *testing.T) {
	dir := t.TempDir()
	persister := engine.NewStatePersister(filepath.Join(dir, "does-not-exist.json"))

	state, err := persister.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Installed())
}

func TestStatePersister_Flush_RejectsRelativePath(t *testing.T) {
	persister := engine.NewStatePersister("relative/path.json")
	err := persister.Flush(engine.NewTransientState(nil, nil, nil))
	assert.Error(t, err)
}
