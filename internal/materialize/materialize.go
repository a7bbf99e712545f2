// Package materialize runs the pipeline from raw dataset to stored
// summary relations.
//
// Ensure builds only what is missing and coalesces concurrent callers;
// Rematerialize rebuilds everything and purges the read cache.
package materialize

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/blackwell-systems/jobskills/internal/aggregate"
	"github.com/blackwell-systems/jobskills/internal/cache"
	"github.com/blackwell-systems/jobskills/internal/clean"
	"github.com/blackwell-systems/jobskills/internal/dataset"
	"github.com/blackwell-systems/jobskills/internal/metrics"
	"github.com/blackwell-systems/jobskills/internal/store"
)

// Result describes one materialization run.
type Result struct {
	RunID    string
	Runs     []store.Run
	Duration time.Duration
}

// Materializer builds summary relations from a dataset provider.
type Materializer struct {
	provider dataset.Provider
	store    *store.Store
	cache    cache.Cache
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	progress func(store.Run)

	group singleflight.Group
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithCache sets the cache purged after every run.
func WithCache(c cache.Cache) Option {
	return func(m *Materializer) { m.cache = c }
}

// WithMetrics sets the run metrics sink.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Materializer) { m.metrics = mt }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Materializer) { m.log = l }
}

// WithProgress registers a callback invoked after each relation is written.
func WithProgress(fn func(store.Run)) Option {
	return func(m *Materializer) { m.progress = fn }
}

// New creates a Materializer reading from provider and writing to s.
func New(provider dataset.Provider, s *store.Store, opts ...Option) *Materializer {
	m := &Materializer{
		provider: provider,
		store:    s,
		cache:    cache.Nop{},
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Missing returns the relations not currently materialized.
func (m *Materializer) Missing(ctx context.Context) ([]string, error) {
	var missing []string
	for _, name := range store.RelationNames() {
		exists, err := m.store.Exists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// Ensure materializes every missing relation. Existing relations are left
// untouched, so repeated calls are cheap. Concurrent callers share one run.
func (m *Materializer) Ensure(ctx context.Context) error {
	missing, err := m.Missing(ctx)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	_, err, _ = m.group.Do("ensure", func() (any, error) {
		// another caller may have finished while we waited
		missing, err := m.Missing(ctx)
		if err != nil {
			return nil, err
		}
		if len(missing) == 0 {
			return nil, nil
		}
		return m.run(ctx, missing)
	})
	return err
}

// Rematerialize rebuilds every relation from the provider.
func (m *Materializer) Rematerialize(ctx context.Context) (*Result, error) {
	v, err, _ := m.group.Do("rematerialize", func() (any, error) {
		return m.run(ctx, store.RelationNames())
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (m *Materializer) run(ctx context.Context, relations []string) (res *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	log := m.log.WithField("run_id", runID)
	defer func() {
		m.metrics.ObserveRun(err, time.Since(start))
	}()

	log.WithField("relations", len(relations)).Info("materializing summaries")

	raw, err := m.provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	ds, err := clean.Clean(raw)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"jobs":   len(ds.Jobs),
		"skills": len(ds.Skills),
		"links":  len(ds.Links),
	}).Debug("dataset cleaned")

	encoded := Encode(aggregate.Build(ds))

	res = &Result{RunID: runID}
	for _, name := range relations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, ok := encoded[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrUnknownRelation, name)
		}
		run, err := m.store.PutRun(ctx, runID, name, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to materialize %s: %w", name, err)
		}
		m.metrics.SetRelationRows(name, run.Rows)
		log.WithFields(logrus.Fields{"relation": name, "rows": run.Rows}).Debug("relation written")
		res.Runs = append(res.Runs, *run)
		if m.progress != nil {
			m.progress(*run)
		}
	}

	m.cache.Purge(ctx)
	res.Duration = time.Since(start)
	log.WithField("duration", res.Duration.Round(time.Millisecond)).Info("materialization complete")
	return res, nil
}
