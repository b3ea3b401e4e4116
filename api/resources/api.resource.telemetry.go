// FilePath: api/resources/api.resource.telemetry.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/ranchwatch/telemetry-hub/internal/errors"
	"github.com/ranchwatch/telemetry-hub/internal/hubservice"
	"github.com/ranchwatch/telemetry-hub/internal/ingest"
	"github.com/ranchwatch/telemetry-hub/internal/models"
	"github.com/ranchwatch/telemetry-hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// TelemetryHandlers encapsulates the telemetry-related HTTP handlers
type TelemetryHandlers struct {
	hubservice *hubservice.HubService
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// lastValueParams are the optional query parameters on the last-value
// routes.
type lastValueParams struct {
	Window string `schema:"window"`
}

// @Summary Ingest a device reading
// @Description Accept one telemetry/GPS/battery reading from a device and write it to the time-series store
// @Tags telemetry
// @Accept json
// @Produce json
// @Param payload body models.DevicePayload true "Device reading"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]models.FieldErrors
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /telemetry/ [post]
// @Security BearerAuth
func (h *TelemetryHandlers) IngestTelemetry(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var payload models.DevicePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		nuts.L.Warnf("[TelemetryHandler] %s invalid request body: %v", requestID, err)
		respondWithJSON(w, http.StatusBadRequest, map[string]models.FieldErrors{
			"errors": {"non_field_errors": {"invalid JSON body"}},
		})
		return
	}

	if errs := ingest.ValidatePayload(&payload); !errs.Empty() {
		nuts.L.Warnf("[TelemetryHandler] %s payload rejected: %v", requestID, errs)
		respondWithJSON(w, http.StatusBadRequest, map[string]models.FieldErrors{"errors": errs})
		return
	}

	if err := h.hubservice.IngestReading(r.Context(), &payload); err != nil {
		if errors.IsGateway(err) {
			nuts.L.Errorf("[TelemetryHandler] %s write failed: %v", requestID, err)
			respondWithJSON(w, http.StatusBadGateway, map[string]string{"detail": "Failed to write telemetry"})
			return
		}
		respondWithError(w, errors.NewInternalError("failed to ingest reading", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// @Summary Last known location
// @Description Get the most recent GPS fix for a device within the lookback window
// @Tags telemetry
// @Produce json
// @Param device_id path string true "Device ID"
// @Param window query string false "Lookback window (Go duration, e.g. 24h)"
// @Success 200 {object} models.LastLocation
// @Failure 502 {object} map[string]string
// @Router /last-location/{device_id} [get]
func (h *TelemetryHandlers) LastLocation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	loc, err := h.hubservice.LastLocation(r.Context(), deviceID, parseWindow(r))
	if err == repository.ErrNotFound {
		respondWithJSON(w, http.StatusOK, notFoundBody(deviceID))
		return
	}
	if err != nil {
		nuts.L.Errorf("[TelemetryHandler] %s last-location query failed: %v", requestID, err)
		respondWithJSON(w, http.StatusBadGateway, map[string]string{"detail": "Failed to query telemetry"})
		return
	}

	respondWithJSON(w, http.StatusOK, loc)
}

// @Summary Last sensor snapshot
// @Description Get the most recent ambient/probe reading for a device within the lookback window
// @Tags telemetry
// @Produce json
// @Param device_id path string true "Device ID"
// @Param window query string false "Lookback window (Go duration, e.g. 24h)"
// @Success 200 {object} models.LastTelemetry
// @Failure 502 {object} map[string]string
// @Router /last-telemetry/{device_id} [get]
func (h *TelemetryHandlers) LastTelemetry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]
	requestID := nuts.NID("req", 12)

	row, err := h.hubservice.LastTelemetry(r.Context(), deviceID, parseWindow(r))
	if err == repository.ErrNotFound {
		respondWithJSON(w, http.StatusOK, notFoundBody(deviceID))
		return
	}
	if err != nil {
		nuts.L.Errorf("[TelemetryHandler] %s last-telemetry query failed: %v", requestID, err)
		respondWithJSON(w, http.StatusBadGateway, map[string]string{"detail": "Failed to query telemetry"})
		return
	}

	respondWithJSON(w, http.StatusOK, row)
}

// Helper functions

// parseWindow reads the optional ?window= parameter. Zero means "use the
// configured default"; the service clamps oversized windows.
func parseWindow(r *http.Request) time.Duration {
	var params lastValueParams
	if err := queryDecoder.Decode(&params, r.URL.Query()); err != nil || params.Window == "" {
		return 0
	}
	window, err := time.ParseDuration(params.Window)
	if err != nil || window <= 0 {
		return 0
	}
	return window
}

func notFoundBody(deviceID string) map[string]interface{} {
	return map[string]interface{}{"device_id": deviceID, "found": false}
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
