// Package logger provides leveled printf-style logging for the whole binary.
// Debug output is off by default and enabled with SetVerbose, so library code
// can log freely without polluting normal CLI output.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Level is a log severity.
type Level int32

const (
	// LevelDebug logs everything.
	LevelDebug Level = iota
	// LevelInfo logs informational messages and above.
	LevelInfo
	// LevelWarn logs warnings and errors only.
	LevelWarn
	// LevelError logs errors only.
	LevelError
)

var (
	minLevel atomic.Int32
	std      = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	minLevel.Store(int32(LevelInfo))
}

// SetVerbose lowers the minimum level to debug.
func SetVerbose(verbose bool) {
	if verbose {
		minLevel.Store(int32(LevelDebug))
	} else {
		minLevel.Store(int32(LevelInfo))
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func logf(level Level, prefix, format string, args ...any) {
	if int32(level) < minLevel.Load() {
		return
	}
	std.Output(3, prefix+" "+fmt.Sprintf(format, args...)) //nolint:errcheck // logging is best-effort
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	logf(LevelDebug, "DEBUG", format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	logf(LevelInfo, "INFO", format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	logf(LevelWarn, "WARN", format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	logf(LevelError, "ERROR", format, args...)
}
