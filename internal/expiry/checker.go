package expiry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"consent-expiry/internal/metrics"
	"consent-expiry/internal/tcstring"
)

const (
	// RecordKey is where the CMP persists the TC string.
	RecordKey = "IABTCF_TCString"

	// MaxAgeDays is the oldest a record may be and still be kept.
	// A record is removed only when its age in whole days exceeds it.
	MaxAgeDays = 365

	millisPerDay = 24 * 60 * 60 * 1000
)

// Store is the minimal contract the checker needs from a preference store.
// Get reports a missing key as ("", false, nil).
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, key string) error
}

// Outcome describes what a check did.
type Outcome string

const (
	OutcomeMissing  Outcome = "missing"
	OutcomeRetained Outcome = "retained"
	OutcomeExpired  Outcome = "expired"
)

// Result is returned by a successful check.
type Result struct {
	Outcome Outcome   `json:"outcome"`
	Created time.Time `json:"created,omitzero"`
	AgeDays int64     `json:"age_days"`
}

// Checker removes the TC string once it is older than MaxAgeDays.
type Checker struct {
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Registry
}

// Option customises a Checker.
type Option func(*Checker)

// WithClock overrides the wall clock used to compute record age.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Checker) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics sets the registry outcomes are counted in.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Checker) {
		if reg != nil {
			c.metrics = reg
		}
	}
}

// NewChecker builds a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		now:     time.Now,
		log:     zap.NewNop(),
		metrics: metrics.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckAndExpire reads RecordKey from s and removes it when the record is
// more than MaxAgeDays old.
//
// The read and the removal are separate store calls. A CMP writing a fresh
// record between them would lose it; stores here are single-writer in
// practice so no locking is attempted.
func (c *Checker) CheckAndExpire(ctx context.Context, s Store) (Result, error) {
	c.metrics.Inc(metrics.ExpiryChecksTotal)

	tc, ok, err := s.Get(ctx, RecordKey)
	if err != nil {
		return Result{}, c.storeFailure("get", err)
	}
	if !ok {
		c.metrics.Inc(metrics.ConsentMissingTotal)
		return Result{Outcome: OutcomeMissing}, nil
	}

	createdMillis, err := tcstring.CreatedMillis(tc)
	if err != nil {
		c.metrics.Inc(metrics.ConsentMalformedTotal)
		c.log.Warn("consent record malformed, leaving it in place", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	res := Result{
		Created: time.UnixMilli(createdMillis).UTC(),
		AgeDays: AgeDays(c.now().UnixMilli(), createdMillis),
	}

	if !Expired(res.AgeDays) {
		c.metrics.Inc(metrics.ConsentRetainedTotal)
		res.Outcome = OutcomeRetained
		return res, nil
	}

	if err := s.Remove(ctx, RecordKey); err != nil {
		return Result{}, c.storeFailure("remove", err)
	}

	c.metrics.Inc(metrics.ConsentExpiredTotal)
	c.log.Info("consent record expired and removed",
		zap.Int64("age_days", res.AgeDays),
		zap.Time("created", res.Created),
	)
	res.Outcome = OutcomeExpired
	return res, nil
}

func (c *Checker) storeFailure(op string, err error) error {
	c.metrics.Inc(metrics.StoreAccessFailuresTotal)
	c.log.Warn("store access failed", zap.String("op", op), zap.Error(err))
	return &StoreError{Op: op, Key: RecordKey, Err: err}
}

// AgeDays is the whole number of days between createdMillis and nowMillis.
func AgeDays(nowMillis, createdMillis int64) int64 {
	return (nowMillis - createdMillis) / millisPerDay
}

// Expired reports whether a record of the given age must be removed.
func Expired(ageDays int64) bool {
	return ageDays > MaxAgeDays
}
