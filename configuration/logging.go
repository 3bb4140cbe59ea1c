package configuration

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logger writing text or JSON lines to out.
func NewLogger(level logrus.Level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
