package logger

import (
	"io"
	"os"

	"github.com/gai-kavia/kavia-console/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface components depend on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// ZapLogger implements Logger on top of a zap SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// Init initializes a zap SugaredLogger using settings from config. Logs go to
// stderr so stdout stays free for call output.
func Init(cfg *config.Config) (*ZapLogger, error) {
	return New(cfg, os.Stderr), nil
}

// New builds a JSON logger writing to w at the configured level.
func New(cfg *config.Config, w io.Writer) *ZapLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(zapcore.AddSync(w))),
		parseLevel(cfg),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	sugar := logger.Sugar()
	if cfg != nil && cfg.AppName != "" {
		sugar = sugar.With("app", cfg.AppName, "env", cfg.Env)
	}
	S = sugar
	return &ZapLogger{sugar: sugar}
}

func parseLevel(cfg *config.Config) zapcore.Level {
	if cfg == nil {
		return zapcore.InfoLevel
	}
	switch cfg.LogLevel {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

func (l *ZapLogger) InfoObj(msg, key string, obj interface{}) {
	l.sugar.Desugar().Info(msg, zap.Any(key, obj))
}

func (l *ZapLogger) DebugObj(msg, key string, obj interface{}) {
	l.sugar.Desugar().Debug(msg, zap.Any(key, obj))
}

func (l *ZapLogger) WarnObj(msg, key string, obj interface{}) {
	l.sugar.Desugar().Warn(msg, zap.Any(key, obj))
}

func (l *ZapLogger) ErrorObj(msg, key string, obj interface{}) {
	l.sugar.Desugar().Error(msg, zap.Any(key, obj))
}

// Minimal object logging helpers -------------------------------------------------
// These log the given object as a structured field named `key` on the
// package-level logger and are no-ops before Init.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
