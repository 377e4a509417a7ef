// Package api provides the HTTP REST API and WebSocket server for zkfleet.
//
// It exposes the device registry, sync triggers, roster queries and a live
// punch stream to operational tooling (dashboards, payroll integrations,
// scripts).
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
	"github.com/zkfleet/zkfleet-core/internal/fleet"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/config"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.API
	Logger       *logging.Logger
	Registry     *fleet.Registry
	Orchestrator *fleet.Orchestrator
	Store        *attendance.Store
	Version      string
}

// Server is the zkfleet HTTP API server.
//
// It manages the HTTP listener, routes, middleware and the WebSocket hub for
// live punch streaming. Sync triggers are serialized: terminals hold one
// session at a time, so concurrent fleet runs would fight over devices.
type Server struct {
	cfg          config.API
	logger       *logging.Logger
	registry     *fleet.Registry
	orchestrator *fleet.Orchestrator
	store        *attendance.Store
	version      string

	server *http.Server
	hub    *Hub
	cancel context.CancelFunc

	// runMu serializes fleet runs triggered over HTTP.
	runMu      sync.Mutex
	lastReport *fleet.FleetReport
	reportMu   sync.RWMutex
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	return &Server{
		cfg:          deps.Config,
		logger:       deps.Logger,
		registry:     deps.Registry,
		orchestrator: deps.Orchestrator,
		store:        deps.Store,
		version:      deps.Version,
		hub:          NewHub(deps.Logger),
	}, nil
}

// Hub returns the WebSocket hub for live punch broadcasting.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections. The listener runs in a
// background goroutine; stop it with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)
	s.startLiveFeeds(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
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

// HealthCheck verifies the API server is running.
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

// setLastReport stores the most recent fleet run report.
func (s *Server) setLastReport(report fleet.FleetReport) {
	s.reportMu.Lock()
	s.lastReport = &report
	s.reportMu.Unlock()
}

// getLastReport returns the most recent fleet run report, or nil.
func (s *Server) getLastReport() *fleet.FleetReport {
	s.reportMu.RLock()
	defer s.reportMu.RUnlock()
	return s.lastReport
}
