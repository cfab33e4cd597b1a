//go:build !windows

package clean

// WalkDir already reports symlinks without following them.
func isReparsePoint(string) bool { return false }

func longPath(path string) string { return path }
