package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/common"
	"github.com/ternarybob/oaktree/internal/history"
)

// Server is the optional control surface of SPEC_FULL.md §4.12, hosting
// procedure submission, run control, and a live WebSocket event stream.
type Server struct {
	logger   arbor.ILogger
	config   *common.Config
	registry *Registry

	loaderDir string

	server *http.Server
}

// New constructs a Server. store may be nil when config.History.Enabled
// is false; loaderDir is the base directory YAML Include/IncludeProcedure
// "file" attributes are resolved against for procedures submitted over
// POST /procedures.
func New(config *common.Config, logger arbor.ILogger, store *history.Store, loaderDir string) *Server {
	s := &Server{
		logger:    logger,
		config:    config,
		registry:  NewRegistry(logger, store),
		loaderDir: loaderDir,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	addr := config.Server.Host + ":" + strconv.Itoa(config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      withMiddleware(mux, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins serving and blocks until the server stops or errors.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("server: listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the server's top-level http.Handler, for tests that
// want to drive it with httptest without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
