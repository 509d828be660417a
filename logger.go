package auth

import (
	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger adapts a logrus logger. Every line carries component=auth.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.New()
	}
	return &logrusLogger{entry: l.WithField("component", "auth")}
}

func (l *logrusLogger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}
