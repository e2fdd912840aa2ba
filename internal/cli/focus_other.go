//go:build !unix

package cli

import "os"

func focusSignals() []os.Signal {
	return nil
}
