package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/cache"
	"github.com/blackwell-systems/jobskills/internal/config"
	"github.com/blackwell-systems/jobskills/internal/dataset"
	"github.com/blackwell-systems/jobskills/internal/logging"
	"github.com/blackwell-systems/jobskills/internal/materialize"
	"github.com/blackwell-systems/jobskills/internal/metrics"
	"github.com/blackwell-systems/jobskills/internal/query"
	"github.com/blackwell-systems/jobskills/internal/store"
)

// loadConfig reads the config file and environment, then applies any
// global flags that were given.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if dataDir != "" {
		cfg.Source.DataDir = dataDir
	}
	if sourceKind != "" {
		cfg.Source.Kind = sourceKind
	}
	if postgresDSN != "" {
		cfg.Source.PostgresDSN = postgresDSN
	}
	if cacheBackend != "" {
		cfg.Cache.Backend = cacheBackend
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if metricsFile != "" {
		cfg.MetricsFile = metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session holds everything a command needs to read or build summaries.
type session struct {
	cfg     *config.Config
	log     *logrus.Logger
	store   *store.Store
	cache   cache.Cache
	metrics *metrics.Metrics
	mat     *materialize.Materializer
	svc     *query.Service

	closers []func()
}

// openStore loads config and the logger and opens the summary store, without
// touching the raw data source.
func openStore(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	if def, err := config.DefaultDBPath(); err == nil && cfg.DBPath == def {
		if _, err := stateDir(); err != nil {
			return nil, err
		}
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.WithField("db", cfg.DBPath).Debug("store opened")

	return &session{
		cfg:     cfg,
		log:     log,
		store:   st,
		cache:   cache.Nop{},
		metrics: metrics.New(),
	}, nil
}

// newSession opens the store and wires the provider, cache, materializer
// and query service on top of it.
func newSession(ctx context.Context, cmd *cobra.Command, opts ...materialize.Option) (*session, error) {
	s, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	provider, err := s.openProvider(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	if err := s.openCache(ctx); err != nil {
		s.Close()
		return nil, err
	}

	opts = append([]materialize.Option{
		materialize.WithCache(s.cache),
		materialize.WithMetrics(s.metrics),
		materialize.WithLogger(s.log),
	}, opts...)
	s.mat = materialize.New(provider, s.store, opts...)

	s.svc = query.NewService(s.store,
		query.WithEnsurer(s.mat),
		query.WithCache(s.cache),
		query.WithMetrics(s.metrics),
		query.WithLogger(s.log),
	)
	return s, nil
}

func (s *session) openProvider(ctx context.Context) (dataset.Provider, error) {
	switch s.cfg.Source.Kind {
	case config.SourcePostgres:
		p, err := dataset.OpenPostgres(ctx, s.cfg.Source.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, p.Close)
		return p, nil
	default:
		return dataset.NewCSVProvider(s.cfg.Source.DataDir), nil
	}
}

func (s *session) openCache(ctx context.Context) error {
	switch s.cfg.Cache.Backend {
	case config.CacheRedis:
		r := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:      s.cfg.Cache.RedisAddr,
			Password:  s.cfg.Cache.RedisPassword,
			DB:        s.cfg.Cache.RedisDB,
			TTL:       s.cfg.Cache.TTL,
			Namespace: cache.Namespace(s.cfg.DBPath),
		}, s.log)
		s.closers = append(s.closers, func() { r.Close() })
		s.cache = r
	case config.CacheLRU:
		c, err := cache.NewLRU(s.cfg.Cache.Size)
		if err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
		s.cache = c
	default:
		s.cache = cache.Nop{}
	}
	return nil
}

// Close writes the metrics textfile if configured and releases every
// resource the session opened.
func (s *session) Close() {
	if s.cfg.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
			s.log.WithError(err).Warn("failed to write metrics file")
		}
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	if err := s.store.Close(); err != nil {
		s.log.WithError(err).Warn("failed to close database")
	}
}
