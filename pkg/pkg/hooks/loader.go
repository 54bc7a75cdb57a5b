package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HookFileExtensions lists the supported hook file extensions.
var HookFileExtensions = map[string]bool{
	".tengo": true,
	".go":    true,
}

// LoadHooksFromPackageDir loads hooks from a package directory.
// It looks for hook files in the following locations:
// - <packageDir>/.crucible/hooks/<hook-type>.<ext>
// - <packageDir>/hooks/<hook-type>.<ext>
func LoadHooksFromPackageDir(manager HookManager, packageDir string) error {
	hooksDir := filepath.Join(packageDir, ".crucible", "hooks")
	if _, err := os.Stat(hooksDir); err == nil {
		if err := loadHooksFromDir(manager, hooksDir); err != nil {
			return fmt.Errorf("error loading hooks from .crucible/hooks: %w", err)
		}
	}

	hooksDir = filepath.Join(packageDir, "hooks")
	if _, err := os.Stat(hooksDir); err == nil {
		if err := loadHooksFromDir(manager, hooksDir); err != nil {
			return fmt.Errorf("error loading hooks from hooks/: %w", err)
		}
	}

	return nil
}

func loadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read hooks directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if _, ok := HookFileExtensions[ext]; !ok {
			continue
		}

		hookName := strings.TrimSuffix(entry.Name(), ext)
		hookType := HookType(hookName)

		switch hookType {
		case PreInstall, PostInstall, PreRemove, PostRemove:
		default:
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("error reading hook file %s: %w", entry.Name(), err)
		}

		if err := manager.AddHook(Hook{
			Type:    hookType,
			Content: string(content),
		}); err != nil {
			return fmt.Errorf("error adding hook %s: %w", hookName, err)
		}
	}

	return nil
}

// HookTemplate generates a starter script template for a hook type.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreInstall:
		return `// Pre-install hooks
// This script runs before package installation
// Available variables: packageName, packageVersion, installPath, packagePath,
// and each custom variable from the hook context under its own name`

	case PostInstall:
		return `// Post-install hooks
// This script runs after package installation
// Available variables: same as pre-install hooks`

	case PreRemove:
		return `// Pre-remove hooks
// This script runs before package removal
// Available variables: same as pre-install hooks`

	case PostRemove:
		return `// Post-remove hooks
// This script runs after package removal
// Available variables: same as pre-install hooks`

	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
