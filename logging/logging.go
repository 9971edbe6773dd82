// Package logging attaches a structured logger to a context.Context so any
// operation holding a ctx can log without threading a logger parameter
// through every call. The concrete sink is backed by go.uber.org/zap.
//
// Companion logs streamed from the target itself (tailCompanionLogs) are a
// separate concern and are not routed through this package.
package logging

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is the key type for a *Logger attached to a context.Context.
type contextKey struct{}

// Logger is a structured, leveled logger. Fields are attached with With and
// propagate to every subsequent call on the returned Logger.
type Logger struct {
	z *zap.SugaredLogger
}

// New wraps a *zap.SugaredLogger as a Logger.
func New(z *zap.SugaredLogger) *Logger {
	return &Logger{z: z}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return New(zap.NewNop().Sugar())
}

// With returns a Logger that attaches the given key/value pairs to every
// subsequent log call.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{z: l.z.With(kv...)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, kv ...interface{}) { l.z.Debugw(msg, kv...) }

// Info logs at info level.
func (l *Logger) Info(msg string, kv ...interface{}) { l.z.Infow(msg, kv...) }

// Error logs at error level.
func (l *Logger) Error(msg string, kv ...interface{}) { l.z.Errorw(msg, kv...) }

// NewContext returns a context carrying l. Descendants of the returned
// context observe l until a new Logger is attached.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext extracts the Logger attached to ctx, or a no-op Logger if none
// was attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return l
	}
	return Nop()
}

// Debug logs at debug level using the Logger attached to ctx.
func Debug(ctx context.Context, msg string, kv ...interface{}) { FromContext(ctx).Debug(msg, kv...) }

// Info logs at info level using the Logger attached to ctx.
func Info(ctx context.Context, msg string, kv ...interface{}) { FromContext(ctx).Info(msg, kv...) }

// Error logs at error level using the Logger attached to ctx.
func Error(ctx context.Context, msg string, kv ...interface{}) { FromContext(ctx).Error(msg, kv...) }
