package utils

import "path/filepath"

// ResolveInPlace rewrites each non-empty relative path so it is relative to
// baseDir instead of the working directory. Absolute and empty paths are left
// alone.
func ResolveInPlace(baseDir string, paths ...*string) {
	for _, p := range paths {
		if p == nil || *p == "" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(baseDir, *p)
	}
}
