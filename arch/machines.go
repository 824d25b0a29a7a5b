package bbox_arch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elastic/go-sysinfo"
)

const (
	LibcMusl  = "musl"
	LibcGlibc = "glibc"
)

// Machine describes a target architecture and the toolchain triple
// used to build for it (musl flavour).
type Machine struct {
	Name   string
	Triple string
}

var machines = []*Machine{
	{Name: "aarch64", Triple: "aarch64-linux-musl"},
	{Name: "armv4t", Triple: "armv4-linux-musleabi"},
	{Name: "armv6", Triple: "armv6-linux-musleabihf"},
	{Name: "armv7a", Triple: "armv7a-linux-musleabihf"},
	{Name: "i686", Triple: "i686-bolt-linux-musl"},
	{Name: "mipsel", Triple: "mipsel-linux-musl"},
	{Name: "mips64el", Triple: "mips64el-linux-musl"},
	{Name: "powerpc", Triple: "powerpc-linux-musl"},
	{Name: "powerpc64le", Triple: "powerpc64le-linux-musl"},
	{Name: "riscv64", Triple: "riscv64-linux-musl"},
	{Name: "s390x", Triple: "s390x-linux-musl"},
	{Name: "x86_64", Triple: "x86_64-bolt-linux-musl"},
}

// Machines returns the names of all supported target machines, sorted.
func Machines() []string {
	names := []string{}
	for _, m := range machines {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// NormalizeMachine turns user input like "x86-64" into "x86_64".
func NormalizeMachine(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}

// GetMachine if the machine naming matches
func GetMachine(name string) (*Machine, error) {
	for _, m := range machines {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("Unknown target architecture: %s", name)
}

// ValidLibc checks the C runtime name.
func ValidLibc(libc string) bool {
	return libc == LibcMusl || libc == LibcGlibc
}

// TargetForMachine returns the toolchain triple of a machine for the given C library.
func TargetForMachine(name string, libc string) (string, error) {
	m, err := GetMachine(name)
	if err != nil {
		return "", err
	}
	switch libc {
	case LibcMusl:
		return m.Triple, nil
	case LibcGlibc:
		return strings.Replace(m.Triple, "musl", "gnu", 1), nil
	}
	return "", fmt.Errorf("Unknown C runtime library: %s", libc)
}

// HostMachine returns the architecture of the build host, e.g. "x86_64".
func HostMachine() (string, error) {
	host, err := sysinfo.Host()
	if err != nil {
		return "", fmt.Errorf("Unable to obtain host information: %s", err.Error())
	}
	return NormalizeMachine(host.Info().Architecture), nil
}
