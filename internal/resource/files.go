package resource

import (
	"path/filepath"
	"strings"
)

// Join resolves child against dir. An absolute child, or one starting with
// a path separator, is returned unchanged; an empty dir means the working
// directory.
func Join(dir, child string) string {
	if dir == "" || filepath.IsAbs(child) {
		return child
	}
	if strings.HasPrefix(child, "/") || strings.HasPrefix(child, `\`) {
		return child
	}
	return filepath.Join(dir, child)
}

// Canonical returns the absolute, symlink-free form of p. When symlinks
// cannot be resolved (the path does not exist yet, say) the cleaned
// absolute path is returned instead.
func Canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// FileName returns the last element of p without its extension:
// "data/rates.txt" gives "rates".
func FileName(p string) string {
	base := filepath.Base(p)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// Extension returns the extension of p's last element including the dot,
// or "" when there is none.
func Extension(p string) string {
	base := filepath.Base(p)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i:]
	}
	return ""
}
