package log

import (
	stdlog "log"
	"os"
)

// Level represents logging verbosity
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// Logger provides leveled logging over the standard library logger
type Logger struct {
	name  string
	level Level
}

// New creates a named logger with the specified level
func New(name string, level Level) *Logger {
	return &Logger{name: name, level: level}
}

// NewDefault creates a named logger whose level comes from the LOG_LEVEL
// environment variable (ERROR, WARN, INFO, DEBUG), defaulting to INFO.
func NewDefault(name string) *Logger {
	level := LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "ERROR":
		level = LevelError
	case "WARN":
		level = LevelWarn
	case "INFO":
		level = LevelInfo
	case "DEBUG":
		level = LevelDebug
	}
	return &Logger{name: name, level: level}
}

func (l *Logger) printf(tag, format string, args ...interface{}) {
	if l.name != "" {
		stdlog.Printf("["+tag+"] ("+l.name+") "+format, args...)
		return
	}
	stdlog.Printf("["+tag+"] "+format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LevelError {
		l.printf("ERROR", format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LevelWarn {
		l.printf("WARN", format, args...)
	}
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LevelInfo {
		l.printf("INFO", format, args...)
	}
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LevelDebug {
		l.printf("DEBUG", format, args...)
	}
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	return l.level
}
