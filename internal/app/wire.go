//go:build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/config"
)

// InitializeServer wires a Server from configuration.
func InitializeServer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
