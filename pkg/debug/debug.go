// Package debug provides conditional debug logging for pertview.
//
// Debug logging is enabled by setting the PERTVIEW_DEBUG environment variable:
//
//	PERTVIEW_DEBUG=1 pertview
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
package debug

import (
	"fmt"
	"log"
	"os"
	"time"
)

var (
	// enabled is true when PERTVIEW_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [PERTVIEW_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("PERTVIEW_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[PERTVIEW_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[PERTVIEW_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Output(2, fmt.Sprintf(format, args...))
}

// LogTiming records how long a named operation took.
func LogTiming(name string, elapsed time.Duration) {
	if !enabled {
		return
	}
	logger.Output(2, fmt.Sprintf("%s took %s", name, elapsed))
}

// Timed runs fn and logs its duration under name.
func Timed(name string, fn func()) {
	if !enabled {
		fn()
		return
	}
	start := time.Now()
	fn()
	LogTiming(name, time.Since(start))
}
