// Package logrus adapts a logrus logger to the logger.Logger interface.
package logrus

import (
	"github.com/raykavin/volguard/pkg/logger"
	"github.com/sirupsen/logrus"
)

// LogrusAdapter wraps a logrus entry so field chains keep their context
type LogrusAdapter struct {
	entry *logrus.Entry
}

var _ logger.Logger = (*LogrusAdapter)(nil)

// NewAdapter wraps the given logrus logger, or the standard logger when nil
func NewAdapter(l *logrus.Logger) *LogrusAdapter {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusAdapter{entry: logrus.NewEntry(l)}
}

func (l *LogrusAdapter) WithField(key string, value any) logger.Logger {
	return &LogrusAdapter{entry: l.entry.WithField(key, value)}
}

func (l *LogrusAdapter) WithFields(fields map[string]any) logger.Logger {
	return &LogrusAdapter{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *LogrusAdapter) WithError(err error) logger.Logger {
	return &LogrusAdapter{entry: l.entry.WithError(err)}
}

func (l *LogrusAdapter) Debug(args ...any) { l.entry.Debug(args...) }
func (l *LogrusAdapter) Info(args ...any)  { l.entry.Info(args...) }
func (l *LogrusAdapter) Warn(args ...any)  { l.entry.Warn(args...) }
func (l *LogrusAdapter) Error(args ...any) { l.entry.Error(args...) }

func (l *LogrusAdapter) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *LogrusAdapter) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *LogrusAdapter) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *LogrusAdapter) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

// SetLevel implements logger.Logger.
func (l *LogrusAdapter) SetLevel(level logger.Level) {
	l.entry.Logger.SetLevel(toLogrusLevel(level))
}

// GetLevel implements logger.Logger.
func (l *LogrusAdapter) GetLevel() logger.Level {
	switch l.entry.Logger.GetLevel() {
	case logrus.TraceLevel:
		return logger.TraceLevel
	case logrus.DebugLevel:
		return logger.DebugLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	default:
		return logger.ErrorLevel
	}
}

func toLogrusLevel(level logger.Level) logrus.Level {
	switch level {
	case logger.TraceLevel:
		return logrus.TraceLevel
	case logger.DebugLevel:
		return logrus.DebugLevel
	case logger.InfoLevel:
		return logrus.InfoLevel
	case logger.WarnLevel:
		return logrus.WarnLevel
	case logger.Disabled:
		return logrus.PanicLevel
	default:
		return logrus.ErrorLevel
	}
}
