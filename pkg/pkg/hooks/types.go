package hooks

// HookType represents the type of a lifecycle hook.
type HookType string

// Supported hook types.
const (
	PreInstall  HookType = "pre-install"
	PostInstall HookType = "post-install"
	PreRemove   HookType = "pre-remove"
	PostRemove  HookType = "post-remove"
)

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	PackageName    string
	PackageVersion string
	PackagePath    string
	InstallPath    string
	Vars           map[string]interface{}
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	Execute(hookType HookType, ctx HookContext) error
	AddHook(hook Hook) error
	RemoveHook(hookType HookType) error
	HasHook(hookType HookType) bool
}
