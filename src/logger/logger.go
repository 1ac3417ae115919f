package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -----------------------------------------------------------------------------

// settings is satisfied by *models.MConfig and anything embedding it.
type settings interface {
	LogSettings() (level string, format string)
}

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name  string
	base  *zap.Logger
	sugar *zap.SugaredLogger
	exit  func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance.
// config may be nil, in which case INFO level JSON output is used.
func NewLogger(config interface{}, name string) *Logger {
	level, format := "INFO", "json"
	if s, ok := config.(settings); ok {
		l, f := s.LogSettings()
		if l != "" {
			level = l
		}
		if f != "" {
			format = f
		}
	}

	base, err := build(level, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v, falling back to production defaults\n", err)
		base, _ = zap.NewProduction()
	}
	return FromZap(base, name)
}

// -----------------------------------------------------------------------------

// FromZap wraps an existing zap logger, tagging entries with the component name.
func FromZap(base *zap.Logger, name string) *Logger {
	return &Logger{
		name:  name,
		base:  base,
		sugar: base.With(zap.String("component", name)).Sugar(),
		exit:  os.Exit,
	}
}

// -----------------------------------------------------------------------------

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return FromZap(zap.NewNop(), "nop")
}

// -----------------------------------------------------------------------------

func build(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	return cfg.Build(zap.AddCallerSkip(1))
}

// -----------------------------------------------------------------------------

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Name returns the component name
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

// Named derives a logger for a sub-component sharing the same sink.
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:  name,
		base:  l.base,
		sugar: l.base.With(zap.String("component", name)).Sugar(),
		exit:  l.exit,
	}
}

// -----------------------------------------------------------------------------

// Debug logs debugging messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.sugar.Errorf("CRITICAL: "+format, args...)
	_ = l.sugar.Sync()
	l.exit(1)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
