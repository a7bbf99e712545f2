// Package query serves typed reads over the materialized summaries and
// the request-time computations layered on them (percent shares, top-N
// selection, month re-aggregation, trend series).
package query

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/jobskills/internal/cache"
	"github.com/blackwell-systems/jobskills/internal/metrics"
	"github.com/blackwell-systems/jobskills/internal/store"
)

// Reader reads rows of a materialized relation.
type Reader interface {
	Get(ctx context.Context, relation string, filters store.Filters) ([]store.Row, error)
}

// Ensurer materializes missing relations.
type Ensurer interface {
	Ensure(ctx context.Context) error
}

// Service answers summary queries.
type Service struct {
	reader  Reader
	ensurer Ensurer
	cache   cache.Cache
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithEnsurer enables materialize-then-retry when a relation is missing.
func WithEnsurer(e Ensurer) Option {
	return func(s *Service) { s.ensurer = e }
}

// WithCache sets the read cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a Service reading from r.
func NewService(r Reader, opts ...Option) *Service {
	s := &Service{
		reader: r,
		cache:  cache.Nop{},
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// read returns the rows of relation matching filters. A missing relation
// is materialized and the read retried exactly once.
func (s *Service) read(ctx context.Context, relation string, filters store.Filters) ([]store.Row, error) {
	key := cache.Key(relation, filters)
	if rows, ok := s.cache.Get(ctx, key); ok {
		s.metrics.CacheHit(relation)
		return rows, nil
	}
	s.metrics.CacheMiss(relation)

	rows, err := s.reader.Get(ctx, relation, filters)
	if errors.Is(err, store.ErrRelationNotFound) && s.ensurer != nil {
		s.log.WithField("relation", relation).Info("relation missing, materializing")
		s.metrics.Retry()
		if err := s.ensurer.Ensure(ctx); err != nil {
			return nil, err
		}
		rows, err = s.reader.Get(ctx, relation, filters)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, rows)
	return rows, nil
}
