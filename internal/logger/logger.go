// Package logger provides leveled progress logging for the railscomplete CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the logging level
type Level int

const (
	// LevelOff disables all logging
	LevelOff Level = iota
	// LevelInfo shows collected files and per-file match counts
	LevelInfo
	// LevelDebug shows every definition as it is matched
	LevelDebug
)

var (
	mu           sync.Mutex
	currentLevel = LevelOff
	startTime    = time.Now()
	out          io.Writer = os.Stderr
)

// SetLevel sets the global logging level and restarts the elapsed clock.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	startTime = time.Now()
}

// GetLevel returns the current logging level
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel
}

// SetOutput redirects log lines. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
}

// IsVerbose returns true if verbose logging is enabled
func IsVerbose() bool {
	return GetLevel() >= LevelInfo
}

// IsDebug returns true if debug logging is enabled
func IsDebug() bool {
	return GetLevel() >= LevelDebug
}

// Info logs an informational message (shown with --verbose)
func Info(format string, args ...interface{}) {
	logf(LevelInfo, "", format, args...)
}

// Debug logs a debug message (shown with --debug)
func Debug(format string, args ...interface{}) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Error logs an error message (shown when verbose is on)
func Error(format string, args ...interface{}) {
	logf(LevelInfo, "[ERROR] ", format, args...)
}

func logf(min Level, tag, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if currentLevel < min {
		return
	}
	elapsed := time.Since(startTime).Round(time.Millisecond)
	fmt.Fprintf(out, "[%s] %s%s\n", elapsed, tag, fmt.Sprintf(format, args...))
}
