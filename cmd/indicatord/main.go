// Command indicatord serves the indicator API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rulego/indicators"
	"github.com/rulego/indicators/config"
	"github.com/rulego/indicators/indicator"
	"github.com/rulego/indicators/logger"
	"github.com/rulego/indicators/server"
	"github.com/rulego/indicators/store"
	"github.com/rulego/indicators/store/memory"
	"github.com/rulego/indicators/store/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "indicatord: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel(), os.Stderr)
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	surveys, inds, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine := indicators.New(
		indicators.WithLogger(log),
		indicators.WithMaxRows(cfg.Engine.MaxRows),
		indicators.WithTimeout(cfg.Engine.Timeout),
		indicators.WithCacheSize(cfg.Engine.CacheSize),
		indicators.WithConcurrency(cfg.Engine.Concurrency),
		indicators.WithRegisterer(reg),
	)
	svc := indicator.NewService(engine, surveys, inds,
		indicator.WithLogger(log),
		indicator.WithNumericThreshold(cfg.Dataset.NumericThreshold),
	)
	srv := server.New(svc, server.WithLogger(log), server.WithGatherer(reg))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.SurveyRepository, store.IndicatorRepository, func(), error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		mem := memory.New()
		return mem.Surveys(), mem.Indicators(), func() {}, nil
	}

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() { closeQuietly(db, log) }
	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			closeDB()
			return nil, nil, nil, err
		}
		log.Info("database schema is up to date")
	}
	return postgres.NewSurveyRepository(db), postgres.NewIndicatorRepository(db), closeDB, nil
}

func closeQuietly(db *sqlx.DB, log logger.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("failed to close database: %v", err)
	}
}
