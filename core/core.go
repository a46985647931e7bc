// Package core holds the process level services the tracker runs on:
// configuration, logging and the frame clock.
package core

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger for cfg writing to stderr.
func NewLogger(cfg LogConfiguration) *logrus.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfiguration, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.Out = out
	logger.SetLevel(cfg.Level)
	if cfg.Format == "json" {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	return logger
}
