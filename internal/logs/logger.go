package logs

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the process logger is built.
type Config struct {
	// Level is a zap level name ("debug", "info", "warn", "error").
	// Unknown names fall back to info.
	Level string
	// BufferSize is the number of recent entries kept in memory.
	BufferSize int
	// Development switches to zap's console encoder.
	Development bool
}

// New builds the process logger. Every entry at or above the configured
// level goes to stderr and into the returned Buffer.
func New(cfg Config) (*zap.Logger, *Buffer, error) {
	level := ParseLevel(cfg.Level)

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	buf := NewBuffer(cfg.BufferSize, level)

	logger, err := zcfg.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, buf.Core())
	}))
	if err != nil {
		return nil, nil, fmt.Errorf("logs: build logger: %w", err)
	}

	return logger, buf, nil
}

// ParseLevel maps a level name to a zapcore.Level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}
