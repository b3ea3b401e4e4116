// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ranchwatch/telemetry-hub/internal/models"
)

var (
	// ErrNotFound indicates that a query succeeded but matched no rows.
	// It is a valid empty result, not a gateway failure.
	ErrNotFound = errors.New("no rows in lookback window")
)

// TelemetryRepository is the single contract around the time-series
// engine. One instance is constructed at process start, shared by
// reference across concurrent request handlers, and closed at shutdown.
// Implementations must be safe for concurrent use.
type TelemetryRepository interface {
	// WritePoints writes the given points synchronously; the call does
	// not return until the engine acknowledged every point.
	WritePoints(ctx context.Context, points []models.Point) error

	// LastLocation returns the newest gps row for the device within the
	// lookback window, or ErrNotFound.
	LastLocation(ctx context.Context, deviceID string, lookback time.Duration) (*models.LastLocation, error)

	// LastTelemetry returns the newest telemetry row for the device
	// within the lookback window, or ErrNotFound.
	LastTelemetry(ctx context.Context, deviceID string, lookback time.Duration) (*models.LastTelemetry, error)

	// Ping verifies the engine is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying engine connection.
	Close()
}
