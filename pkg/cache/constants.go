package cache

import "github.com/cruciblepm/crucible/pkg/fsutil"

// CacheDirPerm is the default permission mode for cache directories (rwx------).
var CacheDirPerm = fsutil.DirModePrivate
