package logger

import corelogger "github.com/kilianp07/batteryform/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format is selected
// with the APP_ENV variable and the minimum level with LOG_LEVEL.
func New(component string) *ZerologLogger {
	return NewZerologLogger(component)
}
