package store

import (
	"context"
	"sync"
	"time"

	"consent-expiry/internal/metrics"
)

// Entry is a single value held by the in-memory store.
type Entry struct {
	Value     string
	UpdatedAt time.Time
}

// Memory is a concurrency-safe in-memory Store.
type Memory struct {
	mu      sync.RWMutex
	data    map[string]Entry
	metrics *metrics.Registry
}

// NewMemory initializes an empty Memory store.
func NewMemory(metricsRegistry *metrics.Registry) *Memory {
	return &Memory{
		data:    make(map[string]Entry),
		metrics: metricsRegistry,
	}
}

// Set inserts or overwrites key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists {
		m.metrics.Inc(metrics.PrefsKeys)
	}

	m.data[key] = Entry{
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return nil
}

// Get returns the value for key, if present.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, exists := m.data[key]
	m.mu.RUnlock()

	if !exists {
		return "", false, nil
	}
	return entry.Value, true, nil
}

// Remove deletes key. Removing a missing key is a no-op.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; ok {
		delete(m.data, key)
		m.metrics.Add(metrics.PrefsKeys, -1)
	}
	return nil
}

// List returns a snapshot of all values.
func (m *Memory) List(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v.Value
	}
	return out, nil
}

// Entries returns a snapshot of all entries including their update times.
func (m *Memory) Entries() map[string]Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Entry, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// MemoryBackend keeps one Memory store per namespace.
type MemoryBackend struct {
	mu         sync.Mutex
	namespaces map[string]*Memory
	metrics    *metrics.Registry
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(metricsRegistry *metrics.Registry) *MemoryBackend {
	return &MemoryBackend{
		namespaces: make(map[string]*Memory),
		metrics:    metricsRegistry,
	}
}

// Namespace returns the store for name, creating it on first use.
func (b *MemoryBackend) Namespace(name string) Store {
	return instrument(b.memory(name), b.metrics)
}

func (b *MemoryBackend) memory(name string) *Memory {
	name = namespaceOrDefault(name)

	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.namespaces[name]
	if !ok {
		m = NewMemory(b.metrics)
		b.namespaces[name] = m
	}
	return m
}

// Close is a no-op for the in-memory backend.
func (b *MemoryBackend) Close() error { return nil }
