package logger

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/statikgen/statik/utils"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	Logger        *logrus.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
	}
}

// NewLogrusLoggerWithConfig creates a logrus text logger writing to out
func NewLogrusLoggerWithConfig(config Config, out io.Writer) Interface {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(LogrusLevel(config.LogLevel))
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   config.Colorful,
		DisableColors: !config.Colorful,
		FullTimestamp: true,
	})
	return NewLogrusLogger(logger, config)
}

// LogMode sets the log level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *LogrusLogger) entry(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("file", utils.FileWithLineNum())
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	return entry
}

// Debug logs debug messages
func (l *LogrusLogger) Debug(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Debug {
		l.entry(ctx).Debugf(msg, data...)
	}
}

// Info logs info messages
func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.entry(ctx).Infof(msg, data...)
	}
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.entry(ctx).Warnf(msg, data...)
	}
}

// Error logs error messages
func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.entry(ctx).Errorf(msg, data...)
	}
}

// Trace logs build phase details
func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	phase, items := fc()

	fields := logrus.Fields{
		"duration": formatDuration(elapsed),
		"phase":    phase,
	}

	if items != -1 {
		fields["items"] = items
	}

	logger := l.Logger.WithFields(fields)
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}

	switch {
	case err != nil:
		logger.WithField("error", err.Error()).Error("phase failed")

	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold:
		logger.WithField("slow_threshold", l.SlowThreshold.String()).Warn("SLOW phase finished")

	case l.LogLevel >= Info:
		logger.Info("phase finished")
	}
}

// LogrusLevel converts LogLevel to logrus.Level
func LogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case Silent:
		return logrus.PanicLevel
	case Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	case Info:
		return logrus.InfoLevel
	case Debug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}
