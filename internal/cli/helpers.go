package cli

import (
	"fmt"

	"github.com/cruciblepm/crucible/pkg/config"
	"github.com/cruciblepm/crucible/pkg/repo"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// loadConfig loads the configuration from ConfigPath, falling back to the
// default config path, and applies the global --output/--no-color/--verbose
// flag overrides (same override set loadConfigAndManager applies).
func loadConfig() (*config.Config, error) {
	configPath := ""
	if ConfigPath != nil {
		configPath = *ConfigPath
	}
	if configPath == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if NoColor != nil && *NoColor {
		cfg.Settings.ColorOutput = false
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.VerboseLogging = true
	}

	return cfg, nil
}

// loadRepoManager builds the pkg/repo.Manager backing the
// repository-index commands (search and cache), using cfg's
// cache directory when set.
func loadRepoManager(cfg *config.Config) (*repo.Manager, error) {
	if cfg.Settings.CacheDir != "" {
		return repo.NewManagerWithCacheDir(cfg.Settings.CacheDir)
	}
	return repo.NewManager()
}

// loadConfigAndManager loads the configuration and creates a manager
// This is a bridge function that the CLI commands can use
func loadConfigAndManager() (*config.Config, *repo.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	manager, err := loadRepoManager(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create manager: %w", err)
	}

	return cfg, manager, nil
}
