package bbox_lib

import (
	"context"
	"os"
	"os/exec"
	"strings"

	wzlib_logger "github.com/infra-whizz/wzlib/logger"
)

type StdoutLogger struct {
	wzlib_logger.WzLogger
}

func (sl *StdoutLogger) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(strings.TrimSpace(string(p)), "\n") {
		if line != "" {
			sl.GetLogger().Info(line)
		}
	}
	return len(p), nil
}

// LoggedExec runs a command, sending its stdout into the logger. The process
// is killed if ctx is cancelled. Extra environment is appended to the
// current one.
func LoggedExec(ctx context.Context, env []string, cmd string, args ...string) error {
	wzlib_logger.GetCurrentLogger().Debugf("Calling: %s %v", cmd, args)
	out := exec.CommandContext(ctx, cmd, args...)
	if len(env) > 0 {
		out.Env = append(os.Environ(), env...)
	}
	out.Stdin = nil
	out.Stdout = &StdoutLogger{}
	out.Stderr = os.Stderr
	return out.Run()
}
