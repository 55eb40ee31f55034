package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/digipraman/loantrack/internal/cache"
	memcache "github.com/digipraman/loantrack/internal/cache/memory"
	"github.com/digipraman/loantrack/internal/config"
	httpserver "github.com/digipraman/loantrack/internal/http"
	"github.com/digipraman/loantrack/internal/http/controllers"
	"github.com/digipraman/loantrack/internal/http/helpers"
	mw "github.com/digipraman/loantrack/internal/http/middlewares"
	"github.com/digipraman/loantrack/internal/http/router"
	"github.com/digipraman/loantrack/internal/observability/logger"
	"github.com/digipraman/loantrack/internal/store/core"
	memstore "github.com/digipraman/loantrack/internal/store/memory"
	pgstore "github.com/digipraman/loantrack/internal/store/pg"
)

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "path to config.yaml (fallback: $CONFIG_PATH, then configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "path to .env (loaded when present)")
	)
	flag.Parse()

	if fileExists(*flagEnvFile) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: loaded %s", *flagEnvFile)
		}
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" && fileExists("configs/config.yaml") {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "loantrack",
	})
	defer logger.Sync()
	zl := logger.Named("main")

	if cfg.Server.MaxBodyBytes > 0 {
		helpers.MaxBodyBytes = cfg.Server.MaxBodyBytes
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres when a DSN is configured; otherwise the in-memory store, which
	// keeps local development DB-free.
	var (
		repo     core.Repository
		poolFunc func() *pgxpool.Pool
	)
	if cfg.Storage.DSN != "" {
		pg, err := pgstore.New(ctx, cfg.Storage.DSN, pgstore.Tuning{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			zl.Fatal("postgres init failed", logger.Err(err))
		}
		defer pg.Close()
		if err := pg.RunMigrations(ctx); err != nil {
			zl.Fatal("migrations failed", logger.Err(err))
		}
		repo = pg
		poolFunc = pg.Pool
		zl.Info("store: postgres")
	} else {
		repo = memstore.New()
		zl.Warn("store: memory (no STORAGE_DSN configured, data is volatile)")
	}

	ttl := 2 * time.Minute
	if d, err := time.ParseDuration(cfg.Cache.DefaultTTL); err == nil && d > 0 {
		ttl = d
	}
	var lookupCache cache.Cache = memcache.New(ttl)

	ctrls := controllers.New(repo, lookupCache, ttl, controllers.Limits{
		DefaultLimit: cfg.API.DefaultLimit,
		MaxLimit:     cfg.API.MaxLimit,
	})

	metricsHandler, err := mw.RegisterMetrics(mw.MetricsConfig{GlobalPool: poolFunc})
	if err != nil {
		zl.Fatal("metrics init failed", logger.Err(err))
	}

	h := router.New(router.Deps{
		Controllers:        ctrls,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Metrics:            metricsHandler,
	})

	zl.Info("service up",
		logger.String("addr", cfg.Server.Addr),
		logger.String("env", cfg.App.Env),
	)
	if err := httpserver.Start(ctx, cfg.Server.Addr, h); err != nil {
		zl.Fatal("http server failed", logger.Err(err))
	}
	zl.Info("service stopped")
}
