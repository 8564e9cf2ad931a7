package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/wakala/partner-recon/internal/api"
	"github.com/wakala/partner-recon/internal/config"
	"github.com/wakala/partner-recon/internal/logger"
	"github.com/wakala/partner-recon/internal/reconciliation"
	"github.com/wakala/partner-recon/internal/repository"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (defaults apply when omitted)")
	logLevel := flag.String("log-level", "", "override log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var runs *repository.RunRepo
	if cfg.Database.Path != "" {
		log.Info("initializing run ledger", zap.String("path", cfg.Database.Path))
		db, err := repository.InitDB(cfg.Database.Path)
		if err != nil {
			log.Fatal("init database", zap.Error(err))
		}
		defer db.Close()
		runs = repository.NewRunRepo(db)
	} else {
		log.Info("run ledger disabled")
	}

	svc := reconciliation.NewService(runs, log.Named("reconciliation"))
	router := api.NewRouter(svc, runs, cfg, log.Named("api"))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("partner reconciliation service listening",
		zap.String("addr", addr),
		zap.String("api_base", "/api/v1"))

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
