// Package log wraps zap behind a context-first Logger interface used across
// the service.
package log

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface injected into every layer.
type Logger interface {
	Debug(ctx context.Context, args ...any)
	Debugf(ctx context.Context, format string, args ...any)
	Info(ctx context.Context, args ...any)
	Infof(ctx context.Context, format string, args ...any)
	Warn(ctx context.Context, args ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Error(ctx context.Context, args ...any)
	Errorf(ctx context.Context, format string, args ...any)
	Fatal(ctx context.Context, args ...any)
	Fatalf(ctx context.Context, format string, args ...any)
}

// ZapConfig holds logger construction options.
type ZapConfig struct {
	Level        string // debug | info | warn | error
	Mode         string // debug | production
	Encoding     string // console | json
	ColorEnabled bool
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// Init builds a Logger from the given config. Invalid options fall back to
// sane debug defaults rather than failing startup.
func Init(cfg ZapConfig) Logger {
	level := zapcore.DebugLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.DebugLevel
	}

	var zcfg zap.Config
	if cfg.Mode == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.Encoding != "" {
		zcfg.Encoding = cfg.Encoding
	}
	if cfg.ColorEnabled && zcfg.Encoding == "console" {
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &zapLogger{sugar: logger.Sugar()}
}

func (l *zapLogger) Debug(ctx context.Context, args ...any) { l.sugar.Debug(args...) }
func (l *zapLogger) Info(ctx context.Context, args ...any)  { l.sugar.Info(args...) }
func (l *zapLogger) Warn(ctx context.Context, args ...any)  { l.sugar.Warn(args...) }
func (l *zapLogger) Error(ctx context.Context, args ...any) { l.sugar.Error(args...) }
func (l *zapLogger) Fatal(ctx context.Context, args ...any) { l.sugar.Fatal(args...) }

func (l *zapLogger) Debugf(ctx context.Context, format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *zapLogger) Infof(ctx context.Context, format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *zapLogger) Warnf(ctx context.Context, format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *zapLogger) Errorf(ctx context.Context, format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *zapLogger) Fatalf(ctx context.Context, format string, args ...any) {
	l.sugar.Fatalf(format, args...)
}
