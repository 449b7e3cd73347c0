package logs

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultBufferSize = 1000

// Entry is a single log line retained in memory.
type Entry struct {
	TimeStamp time.Time      `json:"timestamp"`
	Level     zapcore.Level  `json:"level"`
	Logger    string         `json:"logger,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Buffer keeps the most recent log entries in a bounded FIFO.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
	level   zapcore.Level
}

// NewBuffer creates a buffer holding at most maxSize entries at or above level.
func NewBuffer(maxSize int, level zapcore.Level) *Buffer {
	if maxSize <= 0 {
		maxSize = defaultBufferSize
	}
	return &Buffer{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		level:   level,
	}
}

// Logger returns a zap logger that writes only into the buffer.
func (b *Buffer) Logger() *zap.Logger {
	return zap.New(b.Core())
}

// Core exposes the buffer as a zapcore.Core so it can be teed with other sinks.
func (b *Buffer) Core() zapcore.Core {
	return &bufferCore{buf: b}
}

func (b *Buffer) append(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= b.maxSize {
		// drop oldest
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, e)
}

// GetLast returns a copy of up to n most recent entries, oldest first.
func (b *Buffer) GetLast(n int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > len(b.entries) {
		n = len(b.entries)
	}
	if n < 0 {
		n = 0
	}

	start := len(b.entries) - n
	out := make([]Entry, n)
	copy(out, b.entries[start:])
	return out
}

type bufferCore struct {
	buf    *Buffer
	fields []zapcore.Field
}

func (c *bufferCore) Enabled(level zapcore.Level) bool {
	return level >= c.buf.level
}

func (c *bufferCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &bufferCore{buf: c.buf, fields: merged}
}

func (c *bufferCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *bufferCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	var encoded map[string]any
	if len(c.fields)+len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}
		encoded = enc.Fields
	}

	c.buf.append(Entry{
		TimeStamp: ent.Time,
		Level:     ent.Level,
		Logger:    ent.LoggerName,
		Message:   ent.Message,
		Fields:    encoded,
	})
	return nil
}

func (c *bufferCore) Sync() error { return nil }
