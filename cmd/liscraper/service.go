package main

import (
	"context"
	"fmt"

	"liscraper/pkg/cache"
	"liscraper/pkg/config"
	"liscraper/pkg/enrich"
	"liscraper/pkg/kv"
	"liscraper/pkg/logger"
	"liscraper/pkg/orchestrator"
	"liscraper/pkg/ratelimit"
	"liscraper/pkg/scraper"
	"liscraper/pkg/session"
	"liscraper/pkg/store"
)

// service holds the wired component graph for one command invocation
type service struct {
	cfg     *config.Config
	orch    *orchestrator.Orchestrator
	limiter *ratelimit.Limiter
	sess    *session.Manager
	kvStore *kv.RedisStore
	store   *store.Store
	log     logger.Logger
}

// buildService loads configuration and wires every component. The browser
// session failing to start is not fatal; lookups then serve stored data
// only.
func buildService(ctx context.Context, flags map[string]interface{}) (*service, error) {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.GetLogger()

	kvStore := kv.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	snapshotCache := cache.New(kvStore, cfg.Cache.TTL, log)
	limiter := ratelimit.New(kvStore, cfg.RateLimit.PerMinute, cfg.RateLimit.PerHour)

	mongoStore, err := store.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		kvStore.Close()
		return nil, err
	}
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("index bootstrap failed")
	}

	sess := session.NewManager(cfg.Target, cfg.Browser, log)
	if err := sess.Initialize(ctx); err != nil {
		log.WithError(err).Warn("browser session unavailable, serving stored data only")
	}

	companyScraper := scraper.New(scraper.NewSessionDriver(sess), cfg.Scrape, cfg.Target.BaseURL, log)

	var enricher orchestrator.Enricher
	if cfg.Enrichment.Enabled {
		enricher = enrich.NewClient(cfg.Enrichment, log)
	}

	orch := orchestrator.New(snapshotCache, mongoStore, companyScraper, enricher, sess, cfg, log)

	return &service{
		cfg:     cfg,
		orch:    orch,
		limiter: limiter,
		sess:    sess,
		kvStore: kvStore,
		store:   mongoStore,
		log:     log,
	}, nil
}

// Close tears components down in reverse wiring order
func (s *service) Close(ctx context.Context) {
	s.sess.Close()
	if err := s.store.Close(ctx); err != nil {
		s.log.WithError(err).Warn("store close failed")
	}
	if err := s.kvStore.Close(); err != nil {
		s.log.WithError(err).Warn("kv store close failed")
	}
}
