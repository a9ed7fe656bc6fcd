package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"journey-harness/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type Config struct {
	// Path of the JSON log file; empty writes to stderr.
	Path  string
	Level string
}

func DefaultConfig() Config {
	return Config{
		Path:  "browser.log",
		Level: "error",
	}
}

type LoggerAdapter struct {
	sugar *zap.SugaredLogger
	close func() error
}

func NewLoggerAdapter(cfg Config) (*LoggerAdapter, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var (
		sink    zapcore.WriteSyncer
		closeFn = func() error { return nil }
	)
	if cfg.Path == "" {
		sink = zapcore.Lock(os.Stderr)
	} else {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		sink = zapcore.AddSync(file)
		closeFn = file.Close
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level)
	return &LoggerAdapter{
		sugar: zap.New(core).Sugar(),
		close: closeFn,
	}, nil
}

// NewFromZap wraps an existing zap logger; Close only flushes it.
func NewFromZap(l *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{
		sugar: l.Sugar(),
		close: func() error { return nil },
	}
}

func NewNop() *LoggerAdapter {
	return NewFromZap(zap.NewNop())
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{
		sugar: l.sugar.With(key, value),
		close: l.close,
	}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &LoggerAdapter{
		sugar: l.sugar.With(args...),
		close: l.close,
	}
}

func (l *LoggerAdapter) Close() error {
	// Sync fails on terminals and pipes; the file close error is what matters.
	_ = l.sugar.Sync()
	return l.close()
}
