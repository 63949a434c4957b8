package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

func init() {
	// Silence the default charmbracelet/log logger
	// All logging should go through our custom logger instance
	log.SetLevel(log.FatalLevel)
}

var (
	// Log is the global logger instance
	Log *log.Logger

	// logFile is the file handle for the log file
	logFile *os.File
)

// Init initializes the logger in logDir with the given verbosity level.
// When verbose is false, logs go to file only.
// When verbose is true, everything goes to both file and stderr.
func Init(logDir string, verbose bool) error {
	logPath := filepath.Join(logDir, "esoctl.log")

	// Ensure log directory exists
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// Fall back to stderr only if we can't create log dir
		Log = newStderrLogger(verbose)
		return nil
	}

	var err error
	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		Log = newStderrLogger(verbose)
		return nil
	}

	var output io.Writer
	if verbose {
		output = io.MultiWriter(logFile, os.Stderr)
	} else {
		output = logFile
	}

	Log = log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
	})

	if verbose {
		Log.SetLevel(log.DebugLevel)
	} else {
		Log.SetLevel(log.InfoLevel)
	}

	return nil
}

func newStderrLogger(verbose bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}

// Discard returns a logger that writes nowhere, for tests and early startup
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Get returns the global logger, or a discarding one before Init
func Get() *log.Logger {
	if Log == nil {
		return Discard()
	}
	return Log
}

// Close closes the log file and drops the global logger
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	Log = nil
}

// GetLogPath returns the path to the log file in logDir
func GetLogPath(logDir string) string {
	return filepath.Join(logDir, "esoctl.log")
}
