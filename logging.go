// logging.go: pluggable logging for the plugin host
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

// Logger is the host's logging contract. It carries structured key-value
// args so any framework (zap, slog, logrus, zerolog) can sit behind it with
// a thin adapter; the library itself takes no logging dependency.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a logger that attaches the given key-value pairs to every
	// subsequent entry.
	With(args ...any) Logger
}

// NewLogger normalizes the logger a caller hands to HostConfig: a Logger is
// used directly, nil means silent. Anything else is a programming error and
// panics at construction rather than surfacing later as lost logs.
func NewLogger(logger any) Logger {
	switch l := logger.(type) {
	case Logger:
		return l
	case nil:
		return NewNoOpLogger()
	default:
		panic("unsupported logger type: expected Logger interface or nil")
	}
}

// NoOpLogger discards everything. It backs silent hosts and keeps test
// output clean.
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-operation logger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) Debug(msg string, args ...any) {}
func (n *NoOpLogger) Info(msg string, args ...any)  {}
func (n *NoOpLogger) Warn(msg string, args ...any)  {}
func (n *NoOpLogger) Error(msg string, args ...any) {}

// With returns the same silent logger; context has nowhere to go.
func (n *NoOpLogger) With(args ...any) Logger {
	return n
}
