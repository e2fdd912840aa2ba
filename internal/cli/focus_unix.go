//go:build unix

package cli

import (
	"os"
	"syscall"
)

func focusSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}
