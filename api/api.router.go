package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/ranchwatch/telemetry-hub/api/middleware"
	"github.com/ranchwatch/telemetry-hub/api/resources"
	"github.com/ranchwatch/telemetry-hub/internal/hubservice"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.WriteTokenMiddleware
	resources *resources.Resources
	handler   http.Handler
}

func NewRouter(svc *hubservice.HubService, writeToken middleware.WriteTokenConfig, allowedOrigins []string) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewWriteTokenMiddleware(writeToken),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	r.handler = handlers.CombinedLoggingHandler(os.Stdout, cors(r.router))

	return r
}

func (r *Router) setupRoutes() {
	// Public routes
	r.router.HandleFunc("/health/", r.healthHandler).Methods(http.MethodGet)
	r.router.HandleFunc("/health", r.healthHandler).Methods(http.MethodGet)

	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Device writes require the shared write token
	ingest := api.PathPrefix("/telemetry").Subrouter()
	ingest.Use(r.auth.Authenticate)
	ingest.HandleFunc("/", r.resources.Telemetry.IngestTelemetry).Methods(http.MethodPost)
	ingest.HandleFunc("", r.resources.Telemetry.IngestTelemetry).Methods(http.MethodPost)

	// Last-value reads are unauthenticated
	api.HandleFunc("/last-location/{device_id}", r.resources.Telemetry.LastLocation).Methods(http.MethodGet)
	api.HandleFunc("/last-location/{device_id}/", r.resources.Telemetry.LastLocation).Methods(http.MethodGet)
	api.HandleFunc("/last-telemetry/{device_id}", r.resources.Telemetry.LastTelemetry).Methods(http.MethodGet)
	api.HandleFunc("/last-telemetry/{device_id}/", r.resources.Telemetry.LastTelemetry).Methods(http.MethodGet)
}

func (r *Router) healthHandler(w http.ResponseWriter, req *http.Request) {
	if r.resources.HealthCheck != nil {
		r.resources.HealthCheck(w, req)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetHealthCheck overrides the default health handler.
func (r *Router) SetHealthCheck(h func(w http.ResponseWriter, req *http.Request)) {
	r.resources.SetHealthCheck(h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
