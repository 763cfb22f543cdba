package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voyagen/xtreamvault/internal/cache"
	"github.com/voyagen/xtreamvault/internal/config"
	"github.com/voyagen/xtreamvault/internal/fetcher"
	"github.com/voyagen/xtreamvault/internal/logging"
	"github.com/voyagen/xtreamvault/internal/metrics"
	"github.com/voyagen/xtreamvault/internal/server"
	"github.com/voyagen/xtreamvault/internal/service"
	"github.com/voyagen/xtreamvault/internal/store"
)

// refreshLockTTL bounds how long a crashed process can block other refreshes.
const refreshLockTTL = 30 * time.Minute

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use env DATABASE_URL and PLAYLIST_URL")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.RunMigrations(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	m := metrics.New()
	opts := service.Options{
		RefreshInterval:   cfg.RefreshInterval,
		ThrottleOnFailure: cfg.ThrottleOnFailure,
		Logger:            logger,
		Metrics:           m,
	}

	// Connect to Redis if REDIS_URL is configured.
	var rds *cache.Redis
	var appStore store.Store = db
	if cfg.RedisURL != "" {
		rds, err = cache.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}

		cached := store.NewCachedStore(db, rds, logger)
		if err := cached.Purge(ctx); err != nil {
			logger.Warn("cache purge", "err", err)
		}
		appStore = cached
		opts.Lock = service.RedisLock{Redis: rds, TTL: refreshLockTTL}
		logger.Info("redis connected (caching and shared refresh lock enabled)")
	} else {
		logger.Info("redis disabled (REDIS_URL not set)")
	}

	fetch := func(ctx context.Context) ([]string, error) {
		return fetcher.FetchLines(ctx, cfg.PlaylistURL, cfg.UserAgent, cfg.Timeout)
	}
	parser := service.New(appStore, fetch, opts)

	// Startup refresh gate; failures degrade to "no channels updated".
	res, err := parser.Refresh(ctx)
	switch {
	case errors.Is(err, service.ErrRefreshRunning):
		logger.Info("startup refresh skipped: another process is refreshing")
	case err != nil:
		logger.Error("startup refresh", "err", err)
	case res.Skipped:
		logger.Info("startup refresh skipped: playlist parsed recently")
	}

	if rds != nil {
		go parser.RunWorker(ctx, rds)
	}

	srv := server.New(parser, cfg.ServerPort, rds, m, logger)
	return srv.ListenAndServe(ctx)
}
