// FilePath: internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ranchwatch/telemetry-hub/api"
	"github.com/ranchwatch/telemetry-hub/api/middleware"
	"github.com/ranchwatch/telemetry-hub/internal/config"
	"github.com/ranchwatch/telemetry-hub/internal/hubservice"
	"github.com/ranchwatch/telemetry-hub/internal/monitoring"
	"github.com/ranchwatch/telemetry-hub/internal/repository/influx"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
	telemetry  *influx.TelemetryRepo
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Connect to the time-series engine. The repository is built once
	// here and shared by reference across all request handlers.
	telemetry, err := influx.NewTelemetryRepository(s.config.Influx)
	if err != nil {
		return fmt.Errorf("failed to connect to time-series engine: %w", err)
	}
	s.telemetry = telemetry

	s.monitoring = monitoring.NewService(monitoring.Config{
		LogLevel: s.config.Monitoring.LogLevel,
	})
	s.hubservice = hubservice.New(telemetry, s.monitoring, s.config.Query)
	if err := s.hubservice.Validate(); err != nil {
		return err
	}

	router := api.NewRouter(
		s.hubservice,
		middleware.WriteTokenConfig{Token: s.config.Ingest.WriteToken},
		s.config.CORS.AllowedOrigins,
	)
	router.SetHealthCheck(s.handleHealth())

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	// The engine connection is torn down only at process shutdown.
	s.telemetry.Close()

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"version": nuts.GetVersion(),
			"events":  s.monitoring.EventTotals(),
		})
	}
}
