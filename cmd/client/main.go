package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/clients/catalog/rest"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/config"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/lib/logger"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/services/session"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/storage/sqlite"

	"golang.org/x/time/rate"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")

	flag.Parse()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)

	db, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		panic(err)
	}
	defer db.Close()
	log.Info("client state opened", "path", cfg.Storage.Path)

	var limiter *rate.Limiter
	if cfg.Limiter.Enabled {
		limiter = rate.NewLimiter(rate.Limit(cfg.Limiter.Rps), cfg.Limiter.Burst)
	}
	backend := rest.New(log, cfg.Backend.Addr, cfg.Backend.RetryTimeout, cfg.Backend.RetriesCount, limiter)
	store := session.New(log, backend, db)
	backend.SetTokenSource(store)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Initialize(ctx); err != nil {
		log.Error("failed to restore persisted session", "errMsg", err.Error())
	}

	app := NewApplication(cfg, log, store, backend)
	if err := app.run(); err != nil {
		log.Error("client stopped", "reason", err.Error())
		os.Exit(1)
	}
}
