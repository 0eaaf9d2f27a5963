package logging

import (
	"log"
	"os"
	"sync"
)

var (
	instance *Logger
	mu       sync.RWMutex
)

// InitLogger initializes the global logger with the given configuration.
// It should be called once during process startup, before any component
// fetches the logger.
func InitLogger(config *LogConfig) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	instance = logger
	return nil
}

// GetGlobalLogger returns the singleton logger instance.
// If InitLogger has not been called yet, it falls back to a plain stderr
// logger so early bootstrap errors are never swallowed.
func GetGlobalLogger() *Logger {
	mu.RLock()
	if instance != nil {
		defer mu.RUnlock()
		return instance
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = &Logger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
	}
	return instance
}
