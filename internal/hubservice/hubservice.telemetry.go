// FilePath: internal/hubservice/hubservice.telemetry.go
package hubservice

import (
	"context"
	"time"

	"github.com/ranchwatch/telemetry-hub/internal/ingest"
	"github.com/ranchwatch/telemetry-hub/internal/models"
	"github.com/ranchwatch/telemetry-hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// IngestReading builds time-series points from a validated payload and
// writes them to the engine. The telemetry and GPS sub-writes are issued
// sequentially; if either fails the whole request fails, and a sub-write
// that already succeeded is not rolled back. A payload that yields no
// points (all sensors faulted, no GPS fix) succeeds without touching the
// engine.
func (s *HubService) IngestReading(ctx context.Context, payload *models.DevicePayload) error {
	points := ingest.BuildPoints(payload, time.Now())
	if len(points) == 0 {
		nuts.L.Debugf("[HubService] No emittable fields for device %s", payload.DeviceID)
		s.Monitoring.RecordEvent("ingest_empty", map[string]string{"device_id": payload.DeviceID})
		return nil
	}

	for _, point := range points {
		if err := s.Telemetry.WritePoints(ctx, []models.Point{point}); err != nil {
			s.Monitoring.RecordEvent("ingest_write_failed", map[string]string{
				"device_id":   payload.DeviceID,
				"measurement": point.Measurement,
			})
			return err
		}
	}

	s.Monitoring.RecordEvent("ingest_ok", map[string]string{"device_id": payload.DeviceID})
	return nil
}

// LastLocation returns the device's newest GPS row. A row that lacks
// either lat or lon counts as not found, unlike LastTelemetry.
func (s *HubService) LastLocation(ctx context.Context, deviceID string, lookback time.Duration) (*models.LastLocation, error) {
	loc, err := s.Telemetry.LastLocation(ctx, deviceID, s.clampLookback(lookback))
	if err != nil {
		return nil, err
	}
	if !loc.HasFix() {
		return nil, repository.ErrNotFound
	}
	return loc, nil
}

// LastTelemetry returns the device's newest sensor row. Any row counts as
// found, even with partial fields.
func (s *HubService) LastTelemetry(ctx context.Context, deviceID string, lookback time.Duration) (*models.LastTelemetry, error) {
	return s.Telemetry.LastTelemetry(ctx, deviceID, s.clampLookback(lookback))
}

// clampLookback applies the configured default and upper bound to a
// client-supplied window.
func (s *HubService) clampLookback(lookback time.Duration) time.Duration {
	if lookback <= 0 {
		return s.Query.Lookback
	}
	if s.Query.MaxLookback > 0 && lookback > s.Query.MaxLookback {
		return s.Query.MaxLookback
	}
	return lookback
}
