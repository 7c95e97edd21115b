package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogFileOutcome logs the result of a single file acquisition
func LogFileOutcome(log Logger, courseID int64, name, path, outcome string, err error) {
	fields := map[string]interface{}{
		"course_id": courseID,
		"file":      name,
		"path":      path,
		"outcome":   outcome,
	}

	if err != nil {
		log.WithError(err).ErrorWithFields("File could not be downloaded", fields)
		return
	}
	if outcome == "downloaded" {
		log.InfoWithFields("File downloaded", fields)
		return
	}
	log.DebugWithFields("File skipped", fields)
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
