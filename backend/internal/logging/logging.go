// Package logging hands out per-subsystem logrus entries.
package logging

import (
	"os"

	"gopkg.in/Sirupsen/logrus.v0"
)

// For returns a logger tagged with the given subsystem name.
func For(mod string) *logrus.Entry {
	return logrus.StandardLogger().WithField("mod", mod)
}

// Setup configures the standard logger. An unknown level keeps Info and is
// reported once.
func Setup(level string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.WithField("mod", "main").Warnf("unknown log level %q, using info", level)
		return
	}
	logrus.SetLevel(lvl)
}
