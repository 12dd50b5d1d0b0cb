//go:build windows

package app

import "os"

// shutdownSignals are the OS signals that trigger graceful shutdown.
// Windows only delivers os.Interrupt to console processes.
var shutdownSignals = []os.Signal{os.Interrupt}
