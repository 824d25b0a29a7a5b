package bbox_pm

import (
	"context"
	"fmt"
)

// OpkgPackageManager drives opkg against an offline root.
type OpkgPackageManager struct {
	binary string
	conf   string
	root   string

	BasePackageManager
}

// NewOpkgPackageManager creates an opkg caller for the given configuration file and root.
func NewOpkgPackageManager(binary, conf, root string) *OpkgPackageManager {
	pm := new(OpkgPackageManager)
	pm.binary = binary
	if pm.binary == "" {
		pm.binary = "opkg"
	}
	pm.conf = conf
	pm.root = root
	return pm
}

// Name of the package manager
func (pm *OpkgPackageManager) Name() string {
	return "opkg"
}

func (pm *OpkgPackageManager) call(ctx context.Context, args ...string) error {
	if pm.root == "" || pm.conf == "" {
		return fmt.Errorf("opkg is not configured: no root or configuration given")
	}
	return pm.callPackageManager(ctx, pm.binary, append([]string{"--conf", pm.conf, "--offline-root", pm.root}, args...)...)
}

// Update the package index
func (pm *OpkgPackageManager) Update(ctx context.Context) error {
	return pm.call(ctx, "update")
}

// Install packages
func (pm *OpkgPackageManager) Install(ctx context.Context, packages ...string) error {
	return pm.call(ctx, append([]string{"install"}, packages...)...)
}

// Remove packages
func (pm *OpkgPackageManager) Remove(ctx context.Context, packages ...string) error {
	return pm.call(ctx, append([]string{"remove"}, packages...)...)
}
