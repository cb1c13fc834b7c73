package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-onewire/internal/discovery"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-onewire/internal/readings"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// ScanService triggers bus scans and reports scan statistics.
// discovery.Scanner satisfies it.
type ScanService interface {
	Scan(ctx context.Context) (*discovery.ScanResult, error)
	Stats() discovery.ScannerStats
}

// BusPinger checks owserver reachability. owserver.Client satisfies it.
type BusPinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Repo    discovery.Repository
	Scanner ScanService
	Poller  *readings.Poller // optional: nil when readings are disabled
	Bus     BusPinger        // optional: nil disables the bus health probe
	MQTT    *mqtt.Client     // optional: nil when MQTT is disabled
	Version string
}

// Server is the HTTP API server for the 1-Wire bridge.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	repo      discovery.Repository
	scanner   ScanService
	poller    *readings.Poller
	bus       BusPinger
	mqtt      *mqtt.Client
	version   string
	startTime time.Time
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Repo == nil {
		return nil, fmt.Errorf("discovery repository is required")
	}
	if deps.Scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		repo:      deps.Repo,
		scanner:   deps.Scanner,
		poller:    deps.Poller,
		bus:       deps.Bus,
		mqtt:      deps.MQTT,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; the server is stopped
// with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
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
