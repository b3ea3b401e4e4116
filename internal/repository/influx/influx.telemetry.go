// FilePath: internal/repository/influx/influx.telemetry.go
package influx

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/ranchwatch/telemetry-hub/internal/config"
	"github.com/ranchwatch/telemetry-hub/internal/errors"
	"github.com/ranchwatch/telemetry-hub/internal/models"
	"github.com/ranchwatch/telemetry-hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

var locationColumns = []string{"lat", "lon", "alt_m", "vel_kmh", "sats", "hdop"}
var telemetryColumns = []string{"amb_temp_c", "amb_hum_pct", "probe_temp_c"}

// TelemetryRepo implements repository.TelemetryRepository on InfluxDB 2.x.
// The underlying client is safe for concurrent use, so one instance serves
// all in-flight requests.
type TelemetryRepo struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
	bucket   string
}

// NewTelemetryRepository connects to the engine and verifies it is
// reachable before handing the repository to the caller.
func NewTelemetryRepository(cfg config.InfluxConfig) (*TelemetryRepo, error) {
	opts := influxdb2.DefaultOptions().
		SetHTTPRequestTimeout(uint(cfg.Timeout / time.Second))
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	repo := &TelemetryRepo{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		queryAPI: client.QueryAPI(cfg.Org),
		bucket:   cfg.Bucket,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := repo.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}

	nuts.L.Infof("[InfluxDB] Connected to %s bucket=%s", cfg.URL, cfg.Bucket)
	return repo, nil
}

// WritePoints writes each point synchronously and returns on the first
// engine rejection.
func (r *TelemetryRepo) WritePoints(ctx context.Context, points []models.Point) error {
	for _, p := range points {
		pt := write.NewPoint(p.Measurement, p.Tags, p.Fields, p.Time)
		if err := r.writeAPI.WritePoint(ctx, pt); err != nil {
			return errors.NewGatewayError("failed to write point", err)
		}
	}
	return nil
}

// LastLocation returns the newest gps row for the device, or
// repository.ErrNotFound when the window holds no rows.
func (r *TelemetryRepo) LastLocation(ctx context.Context, deviceID string, lookback time.Duration) (*models.LastLocation, error) {
	flux := lastRowQuery(r.bucket, models.MeasurementGPS, deviceID, lookback, locationColumns)
	row, err := r.queryRow(ctx, flux)
	if err != nil {
		return nil, err
	}

	return &models.LastLocation{
		DeviceID: deviceID,
		Found:    true,
		Ts:       row.time,
		Lat:      floatColumn(row.values, "lat"),
		Lon:      floatColumn(row.values, "lon"),
		AltM:     floatColumn(row.values, "alt_m"),
		VelKmh:   floatColumn(row.values, "vel_kmh"),
		Sats:     intColumn(row.values, "sats"),
		Hdop:     floatColumn(row.values, "hdop"),
	}, nil
}

// LastTelemetry returns the newest telemetry row for the device, or
// repository.ErrNotFound when the window holds no rows.
func (r *TelemetryRepo) LastTelemetry(ctx context.Context, deviceID string, lookback time.Duration) (*models.LastTelemetry, error) {
	flux := lastRowQuery(r.bucket, models.MeasurementTelemetry, deviceID, lookback, telemetryColumns)
	row, err := r.queryRow(ctx, flux)
	if err != nil {
		return nil, err
	}

	return &models.LastTelemetry{
		DeviceID:   deviceID,
		Found:      true,
		Ts:         row.time,
		AmbTempC:   floatColumn(row.values, "amb_temp_c"),
		AmbHumPct:  floatColumn(row.values, "amb_hum_pct"),
		ProbeTempC: floatColumn(row.values, "probe_temp_c"),
	}, nil
}

// Ping verifies the engine is reachable.
func (r *TelemetryRepo) Ping(ctx context.Context) error {
	ok, err := r.client.Ping(ctx)
	if err != nil {
		return errors.NewGatewayError("engine unreachable", err)
	}
	if !ok {
		return errors.NewGatewayError("engine not ready", nil)
	}
	return nil
}

// Close tears down the engine connection. Called once at shutdown.
func (r *TelemetryRepo) Close() {
	r.client.Close()
}

type pivotedRow struct {
	time   time.Time
	values map[string]interface{}
}

func (r *TelemetryRepo) queryRow(ctx context.Context, flux string) (*pivotedRow, error) {
	result, err := r.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, errors.NewGatewayError("query failed", err)
	}
	defer result.Close()

	var row *pivotedRow
	for result.Next() {
		rec := result.Record()
		row = &pivotedRow{time: rec.Time(), values: rec.Values()}
		break
	}
	if result.Err() != nil {
		return nil, errors.NewGatewayError("query failed", result.Err())
	}
	if row == nil {
		return nil, repository.ErrNotFound
	}
	return row, nil
}

// floatColumn reads a pivoted column as float, tolerating integer-typed
// samples written by older firmware.
func floatColumn(values map[string]interface{}, key string) *float64 {
	switch v := values[key].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

func intColumn(values map[string]interface{}, key string) *int64 {
	switch v := values[key].(type) {
	case int64:
		return &v
	case float64:
		i := int64(v)
		return &i
	default:
		return nil
	}
}
