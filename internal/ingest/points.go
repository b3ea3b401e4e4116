// FilePath: internal/ingest/points.go
package ingest

import (
	"time"

	"github.com/ranchwatch/telemetry-hub/internal/models"
)

// BuildPoints maps a validated payload to zero, one or two time-series
// points. A point is only emitted when it carries at least one field:
// faulted sensors (ok=false), fixless GPS (valid=false) and blocks with no
// numeric values all produce nothing, so the series never accumulates
// empty samples.
//
// Both points derive their timestamp from the same instant: ts_ms scaled
// to nanoseconds when the device supplied it, otherwise the now argument.
func BuildPoints(p *models.DevicePayload, now time.Time) []models.Point {
	ts := resolveTimestamp(p.TsMs, now)
	points := make([]models.Point, 0, 2)

	if pt, ok := buildTelemetryPoint(p, ts); ok {
		points = append(points, pt)
	}
	if pt, ok := buildGPSPoint(p, ts); ok {
		points = append(points, pt)
	}
	return points
}

func resolveTimestamp(tsMs *int64, now time.Time) time.Time {
	if tsMs != nil {
		return time.Unix(0, *tsMs*int64(time.Millisecond)).UTC()
	}
	return now.UTC()
}

func buildTelemetryPoint(p *models.DevicePayload, ts time.Time) (models.Point, bool) {
	fields := map[string]interface{}{}

	if amb := p.Ambient; amb != nil && amb.OK != nil && *amb.OK {
		if amb.TempC != nil {
			fields["amb_temp_c"] = *amb.TempC
		}
		if amb.HumPct != nil {
			fields["amb_hum_pct"] = *amb.HumPct
		}
	}
	if probe := p.Probe; probe != nil && probe.OK != nil && *probe.OK && probe.TempC != nil {
		fields["probe_temp_c"] = *probe.TempC
	}

	if len(fields) == 0 {
		return models.Point{}, false
	}
	return models.Point{
		Measurement: models.MeasurementTelemetry,
		Tags:        map[string]string{models.TagDeviceID: p.DeviceID},
		Fields:      fields,
		Time:        ts,
	}, true
}

func buildGPSPoint(p *models.DevicePayload, ts time.Time) (models.Point, bool) {
	gps := p.GPS
	if gps == nil || gps.Valid == nil || !*gps.Valid {
		return models.Point{}, false
	}

	fields := map[string]interface{}{}
	floatFields := []struct {
		name  string
		value *float64
	}{
		{"lat", gps.Lat},
		{"lon", gps.Lon},
		{"alt_m", gps.AltM},
		{"vel_kmh", gps.VelKmh},
		{"hdop", gps.Hdop},
	}
	for _, f := range floatFields {
		if f.value != nil {
			fields[f.name] = *f.value
		}
	}
	if gps.Sats != nil {
		fields["sats"] = int64(*gps.Sats)
	}

	if len(fields) == 0 {
		return models.Point{}, false
	}
	return models.Point{
		Measurement: models.MeasurementGPS,
		Tags:        map[string]string{models.TagDeviceID: p.DeviceID},
		Fields:      fields,
		Time:        ts,
	}, true
}
