package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logger  *log.Logger
	logFile *os.File
	once    sync.Once
)

// open creates the log file on first use. The TUI owns the terminal, so the
// logger writes only to the file and falls back to stderr.
func open() {
	once.Do(func() {
		// Create log directory if it doesn't exist
		logDir := "tmp"
		if err := os.MkdirAll(logDir, 0755); err != nil {
			logger = log.New(os.Stderr, "[crawler] ", log.LstdFlags|log.Lshortfile)
			return
		}

		// Create log file with timestamp
		logFileName := filepath.Join(logDir, fmt.Sprintf("crawler-%s.log", time.Now().Format("20060102-150405")))

		var err error
		logFile, err = os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger = log.New(os.Stderr, "[crawler] ", log.LstdFlags|log.Lshortfile)
			return
		}

		logger = log.New(logFile, "[crawler] ", log.LstdFlags|log.Lshortfile)
	})
}

// Std returns the shared logger for components that take a *log.Logger
func Std() *log.Logger {
	open()
	return logger
}

// Discard replaces the shared logger with one that drops everything.
// Intended for tests.
func Discard() {
	once.Do(func() {})
	logger = log.New(io.Discard, "", 0)
}

// Log writes a log message
func Log(format string, v ...interface{}) {
	open()
	if logger != nil {
		logger.Printf(format, v...)
	}
}

// LogError writes an error log message
func LogError(err error, format string, v ...interface{}) {
	open()
	if logger != nil {
		msg := fmt.Sprintf(format, v...)
		logger.Printf("ERROR: %s: %v", msg, err)
	}
}

// CloseLog closes the log file
func CloseLog() {
	if logFile != nil {
		logFile.Close()
	}
}
