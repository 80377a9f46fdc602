package logger

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cruxmailweb/access-management-tool/internal/config"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Init configures the shared logger. Level comes from LOG_LEVEL (default info).
func Init() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// Get returns the shared logger, initializing it on first use.
func Get() *logrus.Logger {
	once.Do(func() {
		if logger == nil {
			Init()
		}
	})
	return logger
}
