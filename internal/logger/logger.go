package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

var (
	Info    *log.Logger
	Warn    *log.Logger
	Debug   *log.Logger
	Verbose *log.Logger
	Error   *log.Logger
	Always  *log.Logger // Always logs to file regardless of log level

	// Current log level for filtering
	currentLogLevel string
)

// Loggers discard everything until InitWithConfig runs, so packages and
// tests can log before the server has opened its log file.
func init() {
	initWriters("info", io.Discard, io.Discard)
}

func InitWithConfig(logLevel, logFilePath string) error {
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	initWriters(logLevel, logFile, os.Stderr)
	return nil
}

// InitWithWriter routes every level at or below logLevel to w. Used by tests
// that assert on log output.
func InitWithWriter(logLevel string, w io.Writer) {
	initWriters(logLevel, w, w)
}

func initWriters(logLevel string, out, errOut io.Writer) {
	currentLogLevel = strings.ToLower(logLevel)

	nullWriter := io.Discard

	Info = log.New(getWriter("info", out, nullWriter), "ℹ️  INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(getWriter("warn", out, nullWriter), "⚠️  WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(getWriter("debug", out, nullWriter), "🐛 DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	Verbose = log.New(getWriter("verbose", out, nullWriter), "🔍 VERBOSE: ", log.Ldate|log.Ltime|log.Lshortfile)
	if out == errOut {
		Error = log.New(out, "❌ ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	} else {
		Error = log.New(io.MultiWriter(errOut, out), "❌ ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	}
	Always = log.New(out, "📝 ALWAYS: ", log.Ldate|log.Ltime)
}

// getWriter returns the appropriate writer based on log level
func getWriter(level string, activeWriter, disabledWriter io.Writer) io.Writer {
	if shouldLog(level) {
		return activeWriter
	}
	return disabledWriter
}

// shouldLog determines if a log level should be active
func shouldLog(level string) bool {
	levels := map[string]int{
		"error":   0,
		"warn":    1,
		"info":    2,
		"debug":   3,
		"verbose": 4,
	}

	currentLevel, exists := levels[currentLogLevel]
	if !exists {
		currentLevel = 2 // default to info
	}

	requiredLevel, exists := levels[level]
	if !exists {
		return false
	}

	return currentLevel >= requiredLevel
}
