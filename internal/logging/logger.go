// Package logging provides a logging abstraction layer that decouples the
// pipeline from specific logging frameworks. This allows for easier testing
// and flexibility in choosing logging implementations.
package logging

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for structured logging throughout the pipeline.
// Implementations should provide structured logging with support for fields
// and error context.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

var (
	mu             sync.Mutex
	sharedLogger   = logrus.New()
	packageLoggers []*logrus.Logger
)

// GetLogger returns the shared logrus instance used across the pipeline.
// Packages that hold their own logger should register it via Register so
// SetAllLogLevels can reach it.
func GetLogger() *logrus.Logger {
	return sharedLogger
}

// Register records a package-level logger so global level changes apply to it.
func Register(logger *logrus.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	packageLoggers = append(packageLoggers, logger)
}

// SetAllLogLevels forces the given level on the shared logger and every
// registered package logger.
func SetAllLogLevels(level logrus.Level) {
	mu.Lock()
	defer mu.Unlock()
	sharedLogger.SetLevel(level)
	for _, l := range packageLoggers {
		l.SetLevel(level)
	}
}
