package docflow

import (
	"context"
	"log/slog"
	"time"
)

// Option configures a Service.
type Option func(*Service) error

// Storer is the minimal store interface held by the Service.
// It covers lifecycle operations only. The full record.Store contract is
// consumed in the record package, which cannot be imported here without a
// cycle. Backends satisfy store.Store, which embeds both.
type Storer interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// sweepRunner is an internal interface for the drift sweeper lifecycle.
type sweepRunner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Service is the top-level handle for Docflow. It holds the store, logger,
// configuration, and clock shared by the record coordinator and workflow
// orchestrator. Use the engine package to wire the subsystems together.
type Service struct {
	config  Config
	logger  *slog.Logger
	store   Storer
	clock   func() time.Time
	sweeper sweepRunner

	started bool
}

// New creates a new Service with the given options.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
		logger: slog.Default(),
		clock:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Logger returns the service's logger.
func (s *Service) Logger() *slog.Logger { return s.logger }

// Store returns the service's store.
func (s *Service) Store() Storer { return s.store }

// Config returns a copy of the service's configuration.
func (s *Service) Config() Config { return s.config }

// Clock returns the service's time source.
func (s *Service) Clock() func() time.Time { return s.clock }

// SetSweeper sets the drift sweeper (called by the engine package).
func (s *Service) SetSweeper(r sweepRunner) { s.sweeper = r }

// Start begins background maintenance (the drift sweeper, when wired).
func (s *Service) Start(ctx context.Context) error {
	if s.sweeper != nil {
		if err := s.sweeper.Start(ctx); err != nil {
			return err
		}
	}
	s.started = true
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop(ctx context.Context) error {
	if s.sweeper != nil && s.started {
		if err := s.sweeper.Stop(ctx); err != nil {
			s.logger.Error("sweeper stop error", "error", err)
		}
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// WithConfig replaces the service configuration wholesale.
func WithConfig(c Config) Option {
	return func(s *Service) error {
		s.config = c
		return nil
	}
}

// WithLogger sets the structured logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) error {
		s.logger = l
		return nil
	}
}

// WithStore sets the persistence backend for the service.
// The store must implement Storer at minimum; typically it will be a
// store.Store which also carries the record.Store contract.
func WithStore(st Storer) Option {
	return func(s *Service) error {
		s.store = st
		return nil
	}
}

// WithClock sets the time source used for record versions. Tests use this
// to make version timestamps deterministic.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) error {
		s.clock = clock
		return nil
	}
}

// WithMaxCascadeIterations overrides the cascade iteration cap.
func WithMaxCascadeIterations(n int) Option {
	return func(s *Service) error {
		s.config.MaxCascadeIterations = n
		return nil
	}
}

// WithSweepSchedule overrides the drift sweeper schedule.
func WithSweepSchedule(expr string) Option {
	return func(s *Service) error {
		s.config.SweepSchedule = expr
		return nil
	}
}
