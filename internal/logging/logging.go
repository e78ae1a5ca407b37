// Package logging sets up the deployment transcript logger.
//
// Mutating commands (deploy, check --install, down) append a structured
// transcript to a log file so operators can reconstruct what a past run
// did to the host — which tools were installed, which compose commands
// ran, how long readiness took. The logger is a sirupsen/logrus instance
// writing timestamped text lines; user-facing output stays on
// stdout/stderr and is handled by the cli package.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a logger appending to the file at path. When the file
// cannot be opened (read-only filesystem, bad path) the logger falls
// back to discarding output rather than failing the deployment — the
// transcript is an aid, not a requirement.
func New(path string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.DebugLevel)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.SetOutput(io.Discard)
		return logger
	}
	logger.SetOutput(file)

	return logger
}

// Discard returns a logger that drops everything. Used by read-only
// commands (status, logs) that should not touch the transcript.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
