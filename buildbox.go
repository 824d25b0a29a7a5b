package bbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	bbox_arch "github.com/infra-whizz/build-box/arch"
	bbox_lib "github.com/infra-whizz/build-box/lib"
	bbox_pm "github.com/infra-whizz/build-box/pm"
	bbox_target "github.com/infra-whizz/build-box/target"
	wzlib_logger "github.com/infra-whizz/wzlib/logger"
	"github.com/prometheus/procfs"
	"gopkg.in/yaml.v3"
)

// Output formats of "info"
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// BuildBox is the application: every command builds its controller from
// the configuration.
type BuildBox struct {
	conf   *Config
	out    io.Writer
	helper bbox_target.MountHelper
	procfs string

	wzlib_logger.WzLogger
}

// NewBuildBox constructor
func NewBuildBox(conf *Config, out io.Writer) *BuildBox {
	bb := new(BuildBox)
	bb.conf = conf
	bb.out = out
	bb.procfs = procfs.DefaultMountPoint
	return bb
}

// SetMountHelper replaces the helper binary from the configuration
func (bb *BuildBox) SetMountHelper(helper bbox_target.MountHelper) *BuildBox {
	bb.helper = helper
	return bb
}

// SetProcFS mount point, /proc by default
func (bb *BuildBox) SetProcFS(mountPoint string) *BuildBox {
	bb.procfs = mountPoint
	return bb
}

// Config of the application
func (bb *BuildBox) Config() *Config {
	return bb.conf
}

func (bb *BuildBox) controller() (*bbox_target.LifecycleController, error) {
	prefix, err := bb.conf.Prefix()
	if err != nil {
		return nil, err
	}
	home, err := bbox_lib.HomeDir()
	if err != nil {
		return nil, err
	}
	proc, err := procfs.NewFS(bb.procfs)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to access process information: %s", bbox_lib.ErrConfig, err.Error())
	}

	helper := bb.helper
	if helper == nil {
		helper = bbox_target.NewExecMountHelper(bb.conf.Helper)
	}

	bb.GetLogger().Debugf("Target prefix: %s", prefix)
	store := bbox_target.NewTargetStore(prefix, home)
	guard := bbox_target.NewMountGuard(helper, proc, store.ReservedDirs())
	return bbox_target.NewLifecycleController(store, bbox_target.NewProcessReaper(proc), guard), nil
}

func (bb *BuildBox) bootstrapper() (*bbox_pm.Bootstrapper, error) {
	machine, err := bb.conf.Machine()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bbox_lib.ErrConfig, err.Error())
	}
	hostMachine, err := bbox_arch.HostMachine()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bbox_lib.ErrConfig, err.Error())
	}
	cache, err := bb.conf.CacheDir()
	if err != nil {
		return nil, err
	}

	return bbox_pm.NewBootstrapper(bbox_pm.BootstrapOptions{
		Release:  bb.conf.Release,
		Arch:     machine,
		Libc:     bb.conf.Libc,
		RepoBase: bb.conf.RepoBase,
		CacheDir: cache,
		HostArch: hostMachine,
		Opkg:     bb.conf.Opkg,
		Verify:   bb.conf.Verify,
	})
}

// Create a target from package spec files
func (bb *BuildBox) Create(ctx context.Context, name string, specs []string, force bool) error {
	boot, err := bb.bootstrapper()
	if err != nil {
		return err
	}
	lc, err := bb.controller()
	if err != nil {
		return err
	}

	bb.GetLogger().Infof("Creating target '%s' (%s, %s)", name, bb.conf.Release, bb.conf.Libc)
	return lc.SetBootstrapper(boot).Create(ctx, name, specs, bbox_target.CreateOptions{Force: force})
}

// List targets, one per line. Defunct targets are marked.
func (bb *BuildBox) List() error {
	lc, err := bb.controller()
	if err != nil {
		return err
	}
	for _, t := range lc.List() {
		if t.State == bbox_target.Defunct {
			fmt.Fprintf(bb.out, "%s (%s)\n", t.Name, t.State)
		} else {
			fmt.Fprintln(bb.out, t.Name)
		}
	}
	return nil
}

// Info prints target metadata in the given format. With key set, only
// that value is printed.
func (bb *BuildBox) Info(name string, format string, key string) error {
	lc, err := bb.controller()
	if err != nil {
		return err
	}
	info, err := lc.Info(name)
	if err != nil {
		return err
	}

	if key != "" {
		value, found := info[key]
		if !found {
			return fmt.Errorf("%w: unknown key '%s'", bbox_lib.ErrNotFound, key)
		}
		info = map[string]string{key: value}
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(info, "", "    ")
		if err != nil {
			return err
		}
		fmt.Fprintln(bb.out, string(data))
	case FormatYAML:
		enc := yaml.NewEncoder(bb.out)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	default:
		if key != "" {
			fmt.Fprintln(bb.out, info[key])
			return nil
		}
		bb.printInfo(info)
	}
	return nil
}

func (bb *BuildBox) printInfo(info map[string]string) {
	keys := []string{}
	width := 0
	for k := range info {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(bb.out, "%*s: %s\n", width, k, info[k])
	}
}

// Delete targets by name
func (bb *BuildBox) Delete(ctx context.Context, names ...string) error {
	lc, err := bb.controller()
	if err != nil {
		return err
	}
	return lc.Delete(ctx, names...)
}
