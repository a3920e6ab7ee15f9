package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LogLevel log level
type LogLevel int

const (
	// Silent silent log level
	Silent LogLevel = iota + 1
	// Error error log level
	Error
	// Warn warn log level
	Warn
	// Info info log level
	Info
	// Debug debug log level
	Debug
)

// Backend names accepted by New
const (
	BackendZerolog = "zerolog"
	BackendZap     = "zap"
	BackendLogrus  = "logrus"
)

// Config logger config
type Config struct {
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Colorful      bool
}

// Interface logger interface
type Interface interface {
	LogMode(LogLevel) Interface
	Debug(context.Context, string, ...interface{})
	Info(context.Context, string, ...interface{})
	Warn(context.Context, string, ...interface{})
	Error(context.Context, string, ...interface{})
	// Trace reports one finished build phase: fc returns the phase
	// description and the number of items it produced (-1 when not counted)
	Trace(ctx context.Context, begin time.Time, fc func() (phase string, items int64), err error)
}

var (
	// Discard logger that drops everything
	Discard Interface = discard{}
	// Default default logger
	Default = NewZerologLoggerWithConfig(Config{
		LogLevel:      Warn,
		SlowThreshold: time.Second,
		Colorful:      true,
	}, os.Stderr)
)

// New creates a logger for the named backend writing to out
func New(backend string, config Config, out io.Writer) (Interface, error) {
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(backend) {
	case "", BackendZerolog:
		return NewZerologLoggerWithConfig(config, out), nil
	case BackendZap:
		return NewZapLoggerWithConfig(config, out), nil
	case BackendLogrus:
		return NewLogrusLoggerWithConfig(config, out), nil
	default:
		return nil, fmt.Errorf("unsupported log backend %q", backend)
	}
}

// ParseLevel converts a level name into a LogLevel
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "silent":
		return Silent, nil
	case "error":
		return Error, nil
	case "", "warn", "warning":
		return Warn, nil
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	}
	return Warn, fmt.Errorf("unknown log level %q", level)
}

func (l LogLevel) String() string {
	switch l {
	case Silent:
		return "silent"
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

func formatDuration(elapsed time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(elapsed.Nanoseconds())/1e6)
}

type discard struct{}

func (d discard) LogMode(LogLevel) Interface                     { return d }
func (discard) Debug(context.Context, string, ...interface{}) {}
func (discard) Info(context.Context, string, ...interface{})  {}
func (discard) Warn(context.Context, string, ...interface{})  {}
func (discard) Error(context.Context, string, ...interface{}) {}
func (discard) Trace(context.Context, time.Time, func() (string, int64), error) {
}
