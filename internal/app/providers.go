// Package app assembles the server from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/config"
	"github.com/cory-johannsen/ludo/internal/frontend/ws"
	"github.com/cory-johannsen/ludo/internal/game/dice"
	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/gameserver"
	"github.com/cory-johannsen/ludo/internal/server"
	"github.com/cory-johannsen/ludo/internal/session"
	"github.com/cory-johannsen/ludo/internal/storage/postgres"
)

// ProviderSet builds a *Server from a config.Config and a *zap.Logger.
var ProviderSet = wire.NewSet(
	ProvideDiceSource,
	ProvideDirectory,
	ProvideSessions,
	ProvideRoller,
	ProvideRules,
	ProvideRecorder,
	gameserver.NewCoordinator,
	wire.Bind(new(ws.EventSink), new(*gameserver.Coordinator)),
	ws.NewHandler,
	ProvideRouter,
	ProvideHTTPService,
	ProvideLifecycle,
	NewServer,
)

// ProvideDiceSource returns the process-wide randomness source.
func ProvideDiceSource() dice.Source {
	return dice.NewCryptoSource()
}

// ProvideDirectory returns an empty room directory drawing ids from src.
func ProvideDirectory(src dice.Source) *room.Directory {
	return room.NewDirectory(room.NewNumericIDs(src))
}

// ProvideSessions returns the connection registry.
func ProvideSessions(cfg config.Config, logger *zap.Logger) *session.Manager {
	return session.NewManager(cfg.Game.OutboxSize, logger)
}

// ProvideRoller returns the pity-adjusted dice roller. A six is forced after
// dice.DefaultPityThreshold consecutive misses.
func ProvideRoller(src dice.Source, logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(src, dice.DefaultPityThreshold, logger.Named("dice"))
}

// ProvideRules maps game configuration to coordinator rules.
func ProvideRules(cfg config.Config) gameserver.Rules {
	return gameserver.Rules{
		DefaultMaxPlayers: cfg.Game.DefaultMaxPlayers,
		EnforceTurnOwner:  cfg.Game.EnforceTurnOwner,
	}
}

// ProvideRecorder connects the match ledger when database.enabled is set.
//
// Postcondition: Returns a nil recorder and a no-op cleanup when the
// ledger is disabled; otherwise the cleanup closes the pool.
func ProvideRecorder(ctx context.Context, cfg config.Config, logger *zap.Logger) (gameserver.MatchRecorder, func(), error) {
	if !cfg.Database.Enabled {
		logger.Info("match ledger disabled")
		return nil, func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting match ledger: %w", err)
	}
	logger.Info("match ledger connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)
	return postgres.NewMatchRepository(pool.DB()), pool.Close, nil
}

// ProvideRouter returns the HTTP routes.
func ProvideRouter(h *ws.Handler, logger *zap.Logger) http.Handler {
	return ws.NewRouter(h, logger.Named("http"))
}

// ProvideHTTPService returns the HTTP listener service.
func ProvideHTTPService(cfg config.Config, h http.Handler, logger *zap.Logger) *server.HTTPService {
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           h,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	return server.NewHTTPService(srv, cfg.Server.ShutdownTimeout, logger.Named("http"))
}

// ProvideLifecycle registers every service with a new Lifecycle.
func ProvideLifecycle(logger *zap.Logger, httpSvc *server.HTTPService) *server.Lifecycle {
	lc := server.NewLifecycle(logger)
	lc.Add("http", httpSvc)
	return lc
}
