// Package dataset manages the lifecycle of the loaded rate table: initial
// load from the configured sources, the local cache, and periodic refresh.
// The table is immutable; a refresh builds a whole new table and swaps it in
// atomically, so readers never observe a half-loaded dataset.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ahmethakanbesel/currency-api/internal/ingest"
	"github.com/ahmethakanbesel/currency-api/internal/rate"
)

// Cache persists decoded rows locally so the service can come up when every
// dataset source is unreachable.
type Cache interface {
	SaveRows(ctx context.Context, rows []rate.Row) (int64, error)
	LoadRows(ctx context.Context) ([]rate.Row, error)
}

// Service owns the current rate table snapshot and hands out converters
// configured with the service-wide fallback policy.
type Service struct {
	base      string
	sources   []ingest.Source
	cache     Cache
	converter []rate.Option
	interval  time.Duration

	table  atomic.Pointer[rate.Table]
	notify chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the local row cache used as a fallback source.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithFallbacks sets the converter options applied to every converter the
// service hands out.
func WithFallbacks(opts ...rate.Option) Option {
	return func(s *Service) { s.converter = opts }
}

// WithRefreshInterval enables the periodic refresh loop. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) { s.interval = d }
}

// NewService creates a dataset service over the given sources. Rates are
// expressed relative to base.
func NewService(base string, sources []ingest.Source, opts ...Option) *Service {
	s := &Service{
		base:    base,
		sources: sources,
		notify:  make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start performs the initial load. When every source fails and a cache is
// configured, cached rows are used instead.
func (s *Service) Start(ctx context.Context) error {
	err := s.Refresh(ctx)
	if err == nil {
		return nil
	}
	if s.cache == nil {
		return err
	}

	slog.Warn("dataset load failed, trying local cache", "error", err)
	rows, cacheErr := s.cache.LoadRows(ctx)
	if cacheErr != nil {
		return fmt.Errorf("load dataset: %w (cache: %v)", err, cacheErr)
	}
	if len(rows) == 0 {
		return fmt.Errorf("load dataset: %w (cache is empty)", err)
	}

	s.table.Store(rate.NewTable(s.base, rows))
	slog.Info("rate table loaded from cache", "rows", len(rows))
	return nil
}

// Refresh loads all sources, persists the rows to the cache, and atomically
// swaps in a freshly built table.
func (s *Service) Refresh(ctx context.Context) error {
	rows, err := ingest.Load(ctx, s.sources...)
	if err != nil {
		return err
	}

	if s.cache != nil {
		if n, err := s.cache.SaveRows(ctx, rows); err != nil {
			slog.Warn("failed to cache dataset rows", "error", err)
		} else if n > 0 {
			slog.Info("cached dataset rows", "rows", n)
		}
	}

	t := rate.NewTable(s.base, rows)
	s.table.Store(t)
	slog.Info("rate table loaded", "currencies", len(t.Currencies()), "rows", len(rows))
	return nil
}

// Table returns the current immutable snapshot, or nil before Start.
func (s *Service) Table() *rate.Table {
	return s.table.Load()
}

// Converter returns a converter over the current snapshot with the configured
// fallbacks. The converter keeps using its snapshot even if a refresh swaps
// the table mid-request.
func (s *Service) Converter() *rate.Converter {
	return rate.NewConverter(s.table.Load(), s.converter...)
}

// Notify wakes the refresh loop ahead of schedule. Non-blocking.
func (s *Service) Notify() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Run refreshes the dataset on the configured interval until ctx is
// cancelled. It returns immediately when no interval is set.
func (s *Service) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.notify:
		}
		if err := s.Refresh(ctx); err != nil {
			slog.Error("dataset refresh failed", "error", err)
		}
	}
}
