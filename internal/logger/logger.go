// Package logger provides the shared structured logger for all services.
package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init initializes the default logger with a JSON handler writing to os.Stdout.
// The level is taken from LOG_LEVEL (default info). It runs only once.
func Init() {
	once.Do(func() {
		level := zerolog.InfoLevel
		if raw := os.Getenv("LOG_LEVEL"); raw != "" {
			if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
				level = parsed
			}
		}
		zerolog.TimeFieldFormat = time.RFC3339
		defaultLogger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	})
}

// Get returns the initialized default logger.
func Get() zerolog.Logger {
	Init()
	return defaultLogger
}

// With returns a logger carrying a service name field, for per-service loggers.
func With(service string) zerolog.Logger {
	return Get().With().Str("service", service).Logger()
}

// Info logs an informational message with alternating key/value args.
func Info(msg string, args ...any) {
	l := Get()
	l.Info().Fields(fields(args)).Msg(msg)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	l := Get()
	l.Warn().Fields(fields(args)).Msg(msg)
}

// Error logs an error message with an attached error.
func Error(msg string, err error, args ...any) {
	l := Get()
	l.Error().Err(err).Fields(fields(args)).Msg(msg)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	l := Get()
	l.Debug().Fields(fields(args)).Msg(msg)
}

func fields(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	m := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		m[key] = args[i+1]
	}
	return m
}
