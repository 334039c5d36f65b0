package logging

import "context"

// MultiLogger fans log messages out to multiple loggers
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a logger that forwards to all given loggers
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Debug logs a debug-level message to all loggers
func (l *MultiLogger) Debug(msg string, fields ...Field) {
	for _, logger := range l.loggers {
		logger.Debug(msg, fields...)
	}
}

// Info logs an info-level message to all loggers
func (l *MultiLogger) Info(msg string, fields ...Field) {
	for _, logger := range l.loggers {
		logger.Info(msg, fields...)
	}
}

// Warn logs a warning-level message to all loggers
func (l *MultiLogger) Warn(msg string, fields ...Field) {
	for _, logger := range l.loggers {
		logger.Warn(msg, fields...)
	}
}

// Error logs an error-level message to all loggers
func (l *MultiLogger) Error(msg string, fields ...Field) {
	for _, logger := range l.loggers {
		logger.Error(msg, fields...)
	}
}

// WithTraceID returns a new multi logger with the trace ID set on all loggers
func (l *MultiLogger) WithTraceID(traceID string) Logger {
	traced := make([]Logger, len(l.loggers))
	for i, logger := range l.loggers {
		traced[i] = logger.WithTraceID(traceID)
	}
	return NewMultiLogger(traced...)
}

// WithContext returns a new logger that extracts trace ID from context
func (l *MultiLogger) WithContext(ctx context.Context) Logger {
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		return l
	}
	return l.WithTraceID(traceID)
}

// SetLevel sets the minimum log level on all loggers
func (l *MultiLogger) SetLevel(level LogLevel) {
	for _, logger := range l.loggers {
		logger.SetLevel(level)
	}
}

// Close closes all loggers, returning the first error encountered
func (l *MultiLogger) Close() error {
	var firstErr error
	for _, logger := range l.loggers {
		if err := logger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
