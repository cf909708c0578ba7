// Package main provides the Ludo room server binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/app"
	"github.com/cory-johannsen/ludo/internal/config"
	"github.com/cory-johannsen/ludo/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty = defaults and environment)")
	writeConfig := flag.String("write-config", "", "write the default configuration to this path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.WriteDefault(*writeConfig); err != nil {
			log.Fatalf("writing default config: %v", err)
		}
		fmt.Fprintf(os.Stdout, "wrote default configuration to %s\n", *writeConfig)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	srv, cleanup, err := app.InitializeServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing server", zap.Error(err))
	}
	defer cleanup()

	logger.Info("ludo server initialized",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("default_max_players", cfg.Game.DefaultMaxPlayers),
		zap.Bool("match_ledger", cfg.Database.Enabled),
		zap.Duration("startup", time.Since(start)),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		cleanup()
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("ludo server stopped")
}
