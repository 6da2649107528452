package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pixelforge/ledmatrixd/internal/catalog"
	"github.com/pixelforge/ledmatrixd/internal/display"
	"github.com/pixelforge/ledmatrixd/internal/history"
	"github.com/pixelforge/ledmatrixd/internal/infrastructure/config"
	"github.com/pixelforge/ledmatrixd/internal/infrastructure/database"
	"github.com/pixelforge/ledmatrixd/internal/infrastructure/logging"
)

// gracefulShutdownTimeout bounds the drain of in-flight requests on Close.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Supervisor *display.Supervisor
	Catalog    *catalog.Catalog
	History    history.Repository
	DB         *database.DB // optional: pool stats for /metrics
	Version    string
}

// Server is the HTTP API server for ledmatrixd.
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	logger     *logging.Logger
	supervisor *display.Supervisor
	catalog    *catalog.Catalog
	history    history.Repository
	db         *database.DB
	version    string

	server *http.Server
	hub    *Hub
	cancel context.CancelFunc
}

// New creates an API server with the given dependencies. The server does
// not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Supervisor == nil {
		return nil, fmt.Errorf("display supervisor is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("asset catalog is required")
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		supervisor: deps.Supervisor,
		catalog:    deps.Catalog,
		history:    deps.History,
		db:         deps.DB,
		version:    deps.Version,
		hub:        NewHub(deps.WS, deps.Logger),
	}, nil
}

// Hub returns the WebSocket hub, for wiring status broadcasts.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start starts the WebSocket hub and launches the HTTP listener in a
// background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close shuts the server down, draining in-flight requests for up to
// gracefulShutdownTimeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
