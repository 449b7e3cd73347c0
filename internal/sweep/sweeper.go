package sweep

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"consent-expiry/internal/expiry"
	"consent-expiry/internal/metrics"
	"consent-expiry/internal/store"
)

const defaultSchedule = "@daily"

// Checker is the expiry check run against each namespace.
type Checker interface {
	CheckAndExpire(ctx context.Context, s expiry.Store) (expiry.Result, error)
}

// Backend resolves a namespace to its preference store.
type Backend interface {
	Namespace(name string) store.Store
}

// Report summarises one sweep.
type Report struct {
	RunID    string                    `json:"run_id"`
	Outcomes map[string]expiry.Outcome `json:"outcomes"`
	Failed   []string                  `json:"failed,omitempty"`
}

// Sweeper runs the expiry check over every configured namespace, on a cron
// schedule and on demand.
type Sweeper struct {
	checker    Checker
	backend    Backend
	namespaces []string
	schedule   string
	cron       *cron.Cron
	log        *zap.Logger
	metrics    *metrics.Registry

	mu      sync.Mutex
	started bool
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithSchedule overrides the cron specification (default "@daily").
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithNamespaces sets the namespaces swept on each run.
func WithNamespaces(names ...string) Option {
	return func(s *Sweeper) {
		if len(names) > 0 {
			s.namespaces = append([]string(nil), names...)
		}
	}
}

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Sweeper) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Sweeper) {
		if reg != nil {
			s.metrics = reg
		}
	}
}

// NewSweeper creates a Sweeper over the default namespace unless told otherwise.
func NewSweeper(checker Checker, backend Backend, opts ...Option) *Sweeper {
	s := &Sweeper{
		checker:    checker,
		backend:    backend,
		namespaces: []string{store.DefaultNamespace},
		schedule:   defaultSchedule,
		log:        zap.NewNop(),
		metrics:    metrics.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		// overlapping runs would race on the same records
		s.cron = cron.New(
			cron.WithLogger(cron.DiscardLogger),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		)
	}
	return s
}

// Start registers the sweep with the scheduler and launches it.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("scheduled sweep finished with errors", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("sweep: schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.started = true
	s.log.Info("sweeper started", zap.String("schedule", s.schedule), zap.Strings("namespaces", s.namespaces))
	return nil
}

// Stop halts the scheduler. The returned context is done once any running
// sweep has finished.
func (s *Sweeper) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = false
	return s.cron.Stop()
}

// RunOnce checks every namespace in order. A failing namespace does not
// stop the others; all failures are combined into the returned error.
func (s *Sweeper) RunOnce(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	log := s.log.With(zap.String("run_id", runID))

	s.metrics.Inc(metrics.SweepRunsTotal)

	report := Report{
		RunID:    runID,
		Outcomes: make(map[string]expiry.Outcome, len(s.namespaces)),
	}

	var errs error
	for _, ns := range s.namespaces {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}

		s.metrics.Inc(metrics.SweepNamespacesTotal)

		res, err := s.checker.CheckAndExpire(ctx, s.backend.Namespace(ns))
		if err != nil {
			s.metrics.Inc(metrics.SweepFailuresTotal)
			report.Failed = append(report.Failed, ns)
			log.Warn("namespace check failed", zap.String("namespace", ns), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("namespace %q: %w", ns, err))
			continue
		}

		report.Outcomes[ns] = res.Outcome
		if res.Outcome == expiry.OutcomeExpired {
			log.Info("consent record expired, consent must be collected again",
				zap.String("namespace", ns),
				zap.Int64("age_days", res.AgeDays),
			)
		}
	}

	log.Debug("sweep finished",
		zap.Int("checked", len(report.Outcomes)),
		zap.Int("failed", len(report.Failed)),
	)
	return report, errs
}
