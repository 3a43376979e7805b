package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a configured Logrus logger: text in development, JSON otherwise
func New(appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env}).Info("logger initialized")
	return logger
}

// Discard returns a logger that writes nothing, for tests
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// LogError logs msg at error level with err attached under "error". fields is not modified.
func LogError(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	entry := make(logrus.Fields, len(fields)+1)
	for k, v := range fields {
		entry[k] = v
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	logger.WithFields(entry).Error(msg)
}
