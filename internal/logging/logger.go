package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const TimeFormat = "2006-01-02 15:04:05.999"

type ctxKey struct{}

// AtomicLevel backs every logger built by New so the level can change at runtime.
var AtomicLevel = zap.NewAtomicLevel()

// New builds the process logger. Development environments get a console encoder,
// everything else gets JSON.
func New(level, env string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if env != "production" {
		config.Encoding = "console"
	}
	config.Level = AtomicLevel
	if err := AtomicLevel.UnmarshalText([]byte(level)); err != nil {
		AtomicLevel.SetLevel(zap.InfoLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeFormat)
	config.DisableStacktrace = true
	config.Sampling = nil
	return config.Build()
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or the global one when none was attached.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.L()
}
