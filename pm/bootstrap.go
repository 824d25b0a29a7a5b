package bbox_pm

import (
	"context"
	"fmt"
	"os"
	"path"

	bbox_arch "github.com/infra-whizz/build-box/arch"
	bbox_lib "github.com/infra-whizz/build-box/lib"
	wzlib_logger "github.com/infra-whizz/wzlib/logger"
	"github.com/isbm/go-shutil"
)

// BootstrapOptions selects what goes into a new target.
type BootstrapOptions struct {
	Release  string
	Arch     string
	Libc     string
	RepoBase string
	CacheDir string
	HostArch string
	Opkg     string // opkg binary, looked up in PATH if empty
	Verify   bool   // verify package list signatures
}

// Bootstrapper populates an empty target with the base layout, metadata
// and packages.
type Bootstrapper struct {
	opts       BootstrapOptions
	targetType string

	wzlib_logger.WzLogger
}

// NewBootstrapper constructor
func NewBootstrapper(opts BootstrapOptions) (*Bootstrapper, error) {
	var err error
	b := new(Bootstrapper)
	b.opts = opts

	if b.targetType, err = bbox_arch.TargetForMachine(opts.Arch, opts.Libc); err != nil {
		return nil, fmt.Errorf("%w: %s", bbox_lib.ErrConfig, err.Error())
	}
	if b.opts.Release == "" {
		return nil, fmt.Errorf("%w: no release specified", bbox_lib.ErrConfig)
	}
	if b.opts.CacheDir == "" {
		return nil, fmt.Errorf("%w: no package cache directory specified", bbox_lib.ErrConfig)
	}
	if b.opts.HostArch == "" {
		return nil, fmt.Errorf("%w: host architecture is unknown", bbox_lib.ErrConfig)
	}

	return b, nil
}

// PackageCache returns the host directory shared by all targets of the
// same release, architecture and C library.
func (b *Bootstrapper) PackageCache() string {
	return path.Join(b.opts.CacheDir, "dists", b.opts.Release, b.opts.Arch, b.opts.Libc)
}

// Bootstrap the target at root. Any failure is an ErrBootstrap.
func (b *Bootstrapper) Bootstrap(ctx context.Context, root string, targetID string, batches []Batch) error {
	if err := b.bootstrap(ctx, root, targetID, batches); err != nil {
		return fmt.Errorf("%w: target '%s': %s", bbox_lib.ErrBootstrap, targetID, err.Error())
	}
	return nil
}

func (b *Bootstrapper) bootstrap(ctx context.Context, root string, targetID string, batches []Batch) error {
	if err := b.prepareTarget(root, targetID); err != nil {
		return err
	}

	tmpdir, err := os.MkdirTemp("", "bbox-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpdir)

	opkgConf := path.Join(tmpdir, "opkg.conf")
	if err = os.WriteFile(opkgConf, []byte(b.renderOpkgConfig()), 0644); err != nil {
		return err
	}

	// The target keeps a copy, so opkg can be used later from inside the chroot.
	dst := path.Join(root, "etc", "opkg", "opkg.conf")
	b.GetLogger().Debugf("Copying %s to %s", opkgConf, dst)
	if err = shutil.CopyFile(opkgConf, dst, false); err != nil {
		return err
	}

	opkg := NewOpkgPackageManager(b.opts.Opkg, opkgConf, root)
	opkg.SetEnv("LC_ALL", "C")
	opkg.SetEnv("TMPDIR", tmpdir)
	return ApplyBatches(ctx, opkg, batches)
}

// Directory scaffolding, metadata and the package cache link.
func (b *Bootstrapper) prepareTarget(root string, targetID string) error {
	for _, d := range []string{"var", "run", "etc", "etc/opkg", "etc/opkg/usign", "tools", "tools/bin"} {
		if err := os.MkdirAll(path.Join(root, d), 0755); err != nil {
			return err
		}
	}

	etcTarget := path.Join(root, "etc", "target")
	b.GetLogger().Debugf("Writing %s", etcTarget)
	if err := os.WriteFile(etcTarget, []byte(b.renderEtcTarget(targetID)), 0644); err != nil {
		return err
	}

	varRun := path.Join(root, "var", "run")
	if _, err := os.Lstat(varRun); os.IsNotExist(err) {
		if err := os.Symlink("../run", varRun); err != nil {
			return err
		}
	}

	cache := b.PackageCache()
	if err := os.MkdirAll(cache, 0755); err != nil {
		return fmt.Errorf("unable to create package cache %s: %s", cache, err.Error())
	}
	cacheLink := path.Join(root, ".pkg-cache")
	if _, err := os.Lstat(cacheLink); os.IsNotExist(err) {
		if err := os.Symlink(cache, cacheLink); err != nil {
			return err
		}
	}

	return nil
}
