package quantummeadow

import (
	"log"
	"sync/atomic"
)

// verboseMode is read from request handlers and fetch goroutines
var verboseMode atomic.Bool

// SetVerbose turns detailed fetch and session logging on or off
func SetVerbose(verbose bool) {
	verboseMode.Store(verbose)
}

// Verbose reports whether verbose logging is enabled
func Verbose() bool {
	return verboseMode.Load()
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	if verboseMode.Load() {
		log.Printf("[verbose] "+format, v...)
	}
}
