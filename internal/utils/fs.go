package utils

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// EnsureDir ensures the parent directory of path exists, creating it if necessary
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// IsHidden reports whether a file or directory name is hidden
func IsHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

// ReplaceExt swaps the extension of a slash separated path
func ReplaceExt(rel, ext string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + ext
}

// IsWithin reports whether target lies inside (or is) root
func IsWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// DirStats returns the number of regular files and their total size under dir
func DirStats(dir string) (int, int64, error) {
	var count int
	var size int64

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			count++
			size += info.Size()
		}
		return nil
	})

	return count, size, err
}
