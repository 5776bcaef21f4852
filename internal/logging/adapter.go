package logging

import (
	"log/slog"
)

// CronAdapter adapts an slog.Logger to the logger interface of robfig/cron.
// Arguments are alternating key-value pairs: key1, value1, key2, value2, ...
type CronAdapter struct {
	logger *slog.Logger
}

// NewCronAdapter creates a new CronAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewCronAdapter(logger *slog.Logger) *CronAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CronAdapter{logger: logger}
}

// Info logs routine scheduler messages. The scheduler is chatty, so they go out at debug level.
func (a *CronAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

// Error logs a scheduler error.
func (a *CronAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{Err(err)}, keysAndValues...)
	a.logger.Error(msg, args...)
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *CronAdapter) Logger() *slog.Logger {
	return a.logger
}
