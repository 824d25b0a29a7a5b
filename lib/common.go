package bbox_lib

import (
	"fmt"
	"os/user"
	"path/filepath"
)

// CurrentUID returns the numeric identity of the invoking user.
func CurrentUID() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("%w: unable to determine current user: %s", ErrConfig, err.Error())
	}
	return u.Uid, nil
}

// HomeDir of the invoking user, symlinks resolved.
func HomeDir() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("%w: unable to determine user home directory: %s", ErrConfig, err.Error())
	}
	if u.HomeDir == "" {
		return "", fmt.Errorf("%w: unable to determine user home directory", ErrConfig)
	}
	return CanonicalPath(u.HomeDir), nil
}

// CanonicalPath makes p absolute and resolves symlinks. Paths that cannot be
// resolved (e.g. already gone) are only cleaned.
func CanonicalPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if real, err := filepath.EvalSymlinks(p); err == nil {
		return real
	}
	return filepath.Clean(p)
}
