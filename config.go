package bbox

import (
	"fmt"
	"os"
	"path"
	"strings"

	bbox_arch "github.com/infra-whizz/build-box/arch"
	bbox_lib "github.com/infra-whizz/build-box/lib"
	bbox_target "github.com/infra-whizz/build-box/target"
	wzlib_logger "github.com/infra-whizz/wzlib/logger"
	wzlib_utils "github.com/infra-whizz/wzlib/utils"
	"github.com/isbm/go-nanoconf"
	"gopkg.in/yaml.v3"
)

// ConfigName is looked up by nanoconf as build-box.conf
var ConfigName = "build-box"

var DefaultRepoBase = "http://archive.boltlinux.org/dists"

// Config of a single command run. Values come from the configuration file,
// command line flags override them.
type Config struct {
	Targets  string // target prefix, the per-user default if empty
	Helper   string // privileged mount helper
	Opkg     string
	RepoBase string
	Release  string
	Arch     string
	Libc     string
	Cache    string
	Verify   bool
}

// NewConfig with built-in defaults
func NewConfig() *Config {
	return &Config{
		Helper:   "build-box-do",
		Opkg:     "opkg",
		RepoBase: DefaultRepoBase,
		Libc:     bbox_arch.LibcMusl,
		Verify:   true,
	}
}

// LoadConfig reads the first build-box.conf found in the standard locations.
// A missing file leaves the defaults.
func LoadConfig() (*Config, error) {
	conf := NewConfig()
	finder := nanoconf.NewNanoconfFinder(ConfigName).DefaultSetup(nil)
	if confpath := finder.SetDefaultConfig(finder.FindFirst()).FindDefault(); confpath != "" {
		if err := conf.LoadFile(confpath); err != nil {
			return nil, err
		}
	}
	return conf, nil
}

// LoadFile overlays the values of a configuration file. Keys missing or
// empty in the file keep their current value.
func (c *Config) LoadFile(confpath string) error {
	if !wzlib_utils.FileExists(confpath) {
		wzlib_logger.GetCurrentLogger().Debugf("Configuration %s not found", confpath)
		return nil
	}
	wzlib_logger.GetCurrentLogger().Debugf("Loading configuration from %s", confpath)

	// nanoconf panics on malformed documents
	data, err := os.ReadFile(confpath)
	if err != nil {
		return fmt.Errorf("%w: unable to read %s: %s", bbox_lib.ErrConfig, confpath, err.Error())
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: malformed configuration %s: %s", bbox_lib.ErrConfig, confpath, err.Error())
	}

	root := nanoconf.NewConfig(confpath).Root()
	for key, value := range map[string]*string{
		"targets":   &c.Targets,
		"helper":    &c.Helper,
		"opkg":      &c.Opkg,
		"repo-base": &c.RepoBase,
		"release":   &c.Release,
		"arch":      &c.Arch,
		"libc":      &c.Libc,
		"cache":     &c.Cache,
	} {
		if v := strings.TrimSpace(root.String(key, "")); v != "" {
			*value = v
		}
	}
	return nil
}

// Prefix of all targets, resolved once per command.
func (c *Config) Prefix() (string, error) {
	return bbox_target.ResolvePrefix(c.Targets)
}

// CacheDir for downloaded packages, ~/.cache/build-box by default.
func (c *Config) CacheDir() (string, error) {
	if strings.TrimSpace(c.Cache) != "" {
		return bbox_lib.CanonicalPath(c.Cache), nil
	}
	home, err := bbox_lib.HomeDir()
	if err != nil {
		return "", err
	}
	return path.Join(home, ".cache", "build-box"), nil
}

// Machine to bootstrap, the host machine if not configured.
func (c *Config) Machine() (string, error) {
	if c.Arch != "" {
		return bbox_arch.NormalizeMachine(c.Arch), nil
	}
	return bbox_arch.HostMachine()
}
