package log

import (
	"io"
	"os"

	"github.com/kataras/golog"
)

// GologLogger adapts a *golog.Logger to Logger. Filtering is left to golog.
type GologLogger struct {
	logger *golog.Logger
	level  Level
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger creates a logger writing to stderr.
func NewGologLogger(prefix string, level Level) *GologLogger {
	return NewGologLoggerTo(os.Stderr, prefix, level)
}

// NewGologLoggerTo creates a logger writing to out.
func NewGologLoggerTo(out io.Writer, prefix string, level Level) *GologLogger {
	g := golog.New()
	g.SetOutput(out)
	g.SetPrefix(prefix)
	return WrapGolog(g, level)
}

// WrapGolog uses an existing golog logger, setting its level.
func WrapGolog(g *golog.Logger, level Level) *GologLogger {
	l := &GologLogger{logger: g}
	l.SetLevel(level)
	return l
}

func (l *GologLogger) Debug(format string, v ...any) { l.logger.Debugf(format, v...) }
func (l *GologLogger) Info(format string, v ...any)  { l.logger.Infof(format, v...) }
func (l *GologLogger) Warn(format string, v ...any)  { l.logger.Warnf(format, v...) }
func (l *GologLogger) Error(format string, v ...any) { l.logger.Errorf(format, v...) }

// SetLevel changes the minimum level that is written.
func (l *GologLogger) SetLevel(level Level) {
	l.level = level
	l.logger.SetLevel(level.String())
}

// Level returns the minimum level that is written.
func (l *GologLogger) Level() Level {
	return l.level
}
