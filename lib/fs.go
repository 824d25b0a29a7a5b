package bbox_lib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
)

// IsDirEmpty returns true if the directory has no entries. A missing
// directory is reported through the error.
func IsDirEmpty(pth string) (bool, error) {
	names, err := godirwalk.ReadDirnames(pth, nil)
	if err != nil {
		return false, err
	}
	return len(names) == 0, nil
}

// IsDir returns true only for existing directories (symlinks are not followed).
func IsDir(pth string) bool {
	info, err := os.Lstat(pth)
	return err == nil && info.IsDir()
}

// IsWithin checks if pth equals root or is nested under it.
// Both paths are expected to be canonical.
func IsWithin(pth string, root string) bool {
	root = filepath.Clean(root)
	pth = filepath.Clean(pth)
	if pth == root {
		return true
	}
	if root == string(filepath.Separator) {
		return true
	}
	return strings.HasPrefix(pth, root+string(filepath.Separator))
}
