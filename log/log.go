package log

import (
	"fmt"
	"strings"
)

// Level is a logging severity. Messages below a logger's level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone silences a logger.
	LevelNone
)

var levelNames = [...]string{"debug", "info", "warn", "error", "disable"}

// String returns the golog name of the level.
func (l Level) String() string {
	if l < LevelDebug || l > LevelNone {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts the level names used in configuration files, in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "off", "disable":
		return LevelNone, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the leveled, printf-style logger used across pilgrim.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

type discard struct{}

func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}

// Discard drops every message.
var Discard Logger = discard{}

var defaultLogger Logger = NewGologLogger("[pilgrim] ", LevelInfo)

// Default returns the logger components fall back to when none is configured.
func Default() Logger {
	return defaultLogger
}

// SetDefault replaces the fallback logger; nil installs Discard.
func SetDefault(logger Logger) {
	if logger == nil {
		logger = Discard
	}
	defaultLogger = logger
}
