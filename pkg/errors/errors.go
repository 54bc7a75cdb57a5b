package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config")
	ErrConfigFileChmod   = fmt.Errorf("failed to set config file permissions")
	ErrConfigFileExists  = fmt.Errorf("config file already exists")
	ErrConfigFileRename  = fmt.Errorf("failed to rename config file")

	// Cache errors.
	ErrCacheClean        = fmt.Errorf("failed to clean cache")
	ErrCacheInfo         = fmt.Errorf("failed to get cache info")
	ErrCacheDirectory    = fmt.Errorf("cache directory cannot be empty")
	ErrCacheCleanIndex   = fmt.Errorf("failed to clean index cache")
	ErrCacheCleanPackage = fmt.Errorf("failed to clean package cache")
	ErrCacheTTLNegative  = fmt.Errorf("cache TTL cannot be negative")

	// Hook errors.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")

	// Settings errors.
	ErrHTTPTimeoutNegative  = fmt.Errorf("HTTP timeout cannot be negative")
	ErrMaxConcurrentInvalid = fmt.Errorf("max concurrent downloads must be positive")

	// Repository/index/package resolution errors.
	ErrRepositoryNotFound   = fmt.Errorf("repository not found")
	ErrPackageNotFound      = fmt.Errorf("package not found")
	ErrArtifactNotFound     = fmt.Errorf("artifact not found")
	ErrArtifactInvalid      = fmt.Errorf("artifact is invalid")
	ErrInvalidArtifactName  = fmt.Errorf("invalid artifact name")
	ErrInvalidVersionString = fmt.Errorf("invalid version string")
	ErrNameRequired         = fmt.Errorf("name is required")
	ErrVersionRequired      = fmt.Errorf("version is required")
	ErrTargetOSEmpty        = fmt.Errorf("target OS cannot be empty")
	ErrTargetArchEmpty      = fmt.Errorf("target architecture cannot be empty")
	ErrFileNotFound         = fmt.Errorf("file not found")
	ErrFileHashMismatch     = fmt.Errorf("file checksum mismatch")
	ErrInvalidPath          = fmt.Errorf("invalid path")
	ErrAlreadyExists        = fmt.Errorf("already exists")
	ErrValidation           = fmt.Errorf("validation failed")
	ErrValidationFailed     = fmt.Errorf("validation failed")
	ErrDownloadFailed       = fmt.Errorf("download failed")
	ErrRepositoryURLInvalid = fmt.Errorf("repository URL is invalid")
)

// ErrRepositoryNotFoundNamed returns an error reporting that the named
// repository was not found.
func ErrRepositoryNotFoundNamed(name string) error {
	return fmt.Errorf("%w: %s", ErrRepositoryNotFound, name)
}

// ErrRepositoryExistsWithName returns an error reporting that a repository
// with the given name already exists.
func ErrRepositoryExistsWithName(name string) error {
	return fmt.Errorf("repository already exists: %s", name)
}

// ErrRepositoryURLEmptyWithName returns an error reporting that the named
// repository has no URL set.
func ErrRepositoryURLEmptyWithName(name string) error {
	return fmt.Errorf("repository URL cannot be empty: %s", name)
}

// ErrEmptyRepositoryNameWithIndex returns an error reporting that the
// repository at the given index has no name.
func ErrEmptyRepositoryNameWithIndex(i int) error {
	return fmt.Errorf("repository name cannot be empty: index %d", i)
}

// ErrInvalidOSValueWithDetails returns an error reporting that os is not
// one of the valid platform OS values.
func ErrInvalidOSValueWithDetails(os string, valid []string) error {
	return fmt.Errorf("invalid OS value %q: must be one of %v", os, valid)
}

// ErrInvalidArchValueWithDetails returns an error reporting that arch is
// not one of the valid platform architecture values.
func ErrInvalidArchValueWithDetails(arch string, valid []string) error {
	return fmt.Errorf("invalid architecture value %q: must be one of %v", arch, valid)
}

// ErrInvalidOutputFormatWithDetails returns an error reporting that format
// is not a supported output format.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("invalid output format %q: must be one of text, json", format)
}

// ErrInvalidLogLevelWithDetails returns an error reporting that level is
// not a supported log level.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
