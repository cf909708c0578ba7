package app

import (
	"context"

	"github.com/cory-johannsen/ludo/internal/gameserver"
	"github.com/cory-johannsen/ludo/internal/server"
)

// Server is the assembled process.
type Server struct {
	Lifecycle   *server.Lifecycle
	Coordinator *gameserver.Coordinator
	HTTP        *server.HTTPService
}

// NewServer bundles the assembled components.
func NewServer(lc *server.Lifecycle, coord *gameserver.Coordinator, httpSvc *server.HTTPService) *Server {
	return &Server{Lifecycle: lc, Coordinator: coord, HTTP: httpSvc}
}

// Run serves until ctx is cancelled, a signal arrives, or a service fails,
// then waits for pending match recordings.
func (s *Server) Run(ctx context.Context) error {
	err := s.Lifecycle.Run(ctx)
	s.Coordinator.Wait()
	return err
}
