package store

import (
	"context"

	"consent-expiry/internal/metrics"
)

// instrumented counts store traffic in the metrics registry.
type instrumented struct {
	next    Store
	metrics *metrics.Registry
}

func instrument(next Store, reg *metrics.Registry) Store {
	return &instrumented{next: next, metrics: reg}
}

func (s *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	s.metrics.Inc(metrics.PrefsGetsTotal)

	value, ok, err := s.next.Get(ctx, key)
	if err == nil && !ok {
		s.metrics.Inc(metrics.PrefsMissesTotal)
	}
	return value, ok, err
}

func (s *instrumented) Set(ctx context.Context, key, value string) error {
	s.metrics.Inc(metrics.PrefsSetsTotal)
	return s.next.Set(ctx, key, value)
}

func (s *instrumented) Remove(ctx context.Context, key string) error {
	s.metrics.Inc(metrics.PrefsRemovesTotal)
	return s.next.Remove(ctx, key)
}

func (s *instrumented) List(ctx context.Context) (map[string]string, error) {
	return s.next.List(ctx)
}
