// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggingLevel is the vendor's log verbosity.
type LoggingLevel int32

// Vendor log levels
const (
	LoggingOff LoggingLevel = iota
	LoggingOn
	LoggingVerbose
)

// LogCallback returns a function suitable as the vendor's log callback,
// it forwards SDK messages into logger.
func LogCallback(logger logrus.FieldLogger) func(message string, level LoggingLevel, source Feature) {
	return func(message string, level LoggingLevel, source Feature) {
		message = strings.TrimRight(message, "\r\n")
		if message == "" {
			return
		}

		entry := logger.WithFields(logrus.Fields{
			"source": source.String(),
			"sdk":    true,
		})
		switch level {
		case LoggingOff:
		case LoggingOn:
			entry.Info(message)
		default:
			entry.Debug(message)
		}
	}
}
