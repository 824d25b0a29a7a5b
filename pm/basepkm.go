package bbox_pm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	bbox_lib "github.com/infra-whizz/build-box/lib"
)

// BasePackageManager mixin
type BasePackageManager struct {
	env map[string]string
}

// SetEnv adds a variable to the package manager environment.
func (bpm *BasePackageManager) SetEnv(key, value string) {
	if bpm.env == nil {
		bpm.env = map[string]string{}
	}
	bpm.env[strings.TrimSpace(key)] = value
}

func (bpm *BasePackageManager) environ() []string {
	env := []string{}
	for ek, ev := range bpm.env {
		env = append(env, fmt.Sprintf("%s=%s", ek, ev))
	}
	sort.Strings(env)
	return env
}

func (bpm *BasePackageManager) callPackageManager(ctx context.Context, name string, args ...string) error {
	return bbox_lib.LoggedExec(ctx, bpm.environ(), name, args...)
}
