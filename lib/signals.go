package bbox_lib

import (
	"os"
	"os/signal"

	wzlib_logger "github.com/infra-whizz/wzlib/logger"
)

// HoldInterrupts defers SIGINT until the returned release function is
// called. Interrupts received in between are dropped, so a cleanup window
// always runs to completion once started.
func HoldInterrupts() (release func()) {
	held := make(chan os.Signal, 1)
	signal.Notify(held, os.Interrupt)
	return func() {
		signal.Stop(held)
		select {
		case sig := <-held:
			wzlib_logger.GetCurrentLogger().Warnf("Ignored %s during cleanup", sig)
		default:
		}
	}
}
