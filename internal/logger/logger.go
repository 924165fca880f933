package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"bananaserver/internal/config"
)

// Logger writes leveled entries (info, warning, error) to one file per
// level under the configured log directory, mirroring each entry to the
// console. A single mutex keeps interleaved writes whole.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	logDir     string
	mu         sync.Mutex
}

// NewLogger creates the log directory and one logger per level.
func NewLogger(cfg *config.Config) *Logger {
	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	l := &Logger{logDir: cfg.LogDirectory}
	l.infoLog = l.newLevel("info.log", os.Stdout, "ℹ️  INFO    ")
	l.warningLog = l.newLevel("warning.log", os.Stdout, "⚠️  WARNING ")
	l.errorLog = l.newLevel("error.log", os.Stderr, "❌ ERROR   ")
	return l
}

// newLevel opens the level's file for appending and tees it with the console.
func (l *Logger) newLevel(filename string, console *os.File, prefix string) *log.Logger {
	path := filepath.Join(l.logDir, filename)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file %s: %v", path, err)
	}

	return log.New(io.MultiWriter(console, file), prefix, log.Ldate|log.Ltime|log.Lshortfile)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Printf(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Printf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Printf(format, v...)
}
