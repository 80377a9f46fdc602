package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = time.Second

// gormLogger forwards GORM logs to logrus. Queries matching any of the
// ignored patterns are dropped entirely so periodic polling does not flood
// the log.
type gormLogger struct {
	log             *logrus.Logger
	ignoredPatterns []string
}

func newGormLogger(log *logrus.Logger, ignoredPatterns ...string) *gormLogger {
	return &gormLogger{log: log, ignoredPatterns: ignoredPatterns}
}

func (l *gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log.Infof(msg, args...)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log.Warnf(msg, args...)
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log.Errorf(msg, args...)
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, rows := fc()

	for _, pattern := range l.ignoredPatterns {
		if strings.Contains(sql, pattern) {
			return
		}
	}

	elapsed := time.Since(begin)
	fields := logrus.Fields{
		"rows":    rows,
		"elapsed": elapsed.String(),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.WithFields(fields).WithError(err).Error(sql)
	case elapsed > slowQueryThreshold:
		l.log.WithFields(fields).Warnf("SLOW QUERY: %s", sql)
	default:
		l.log.WithFields(fields).Debug(sql)
	}
}
