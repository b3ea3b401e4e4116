// FilePath: internal/models/models.lastvalue.go
package models

import "time"

// LastLocation is the newest GPS row for a device within the lookback
// window, pivoted so every field is a column. Individually missing fields
// stay nil and serialize as JSON null.
type LastLocation struct {
	DeviceID string    `json:"device_id"`
	Found    bool      `json:"found"`
	Ts       time.Time `json:"ts"`
	Lat      *float64  `json:"lat"`
	Lon      *float64  `json:"lon"`
	AltM     *float64  `json:"alt_m"`
	VelKmh   *float64  `json:"vel_kmh"`
	Sats     *int64    `json:"sats"`
	Hdop     *float64  `json:"hdop"`
}

// HasFix reports whether the row carries a usable position. A row without
// both lat and lon counts as not found for the last-location endpoint.
func (l *LastLocation) HasFix() bool {
	return l.Lat != nil && l.Lon != nil
}

// LastTelemetry is the newest telemetry row for a device within the
// lookback window. Any row at all counts as found, even with partial
// fields; this differs from LastLocation on purpose.
type LastTelemetry struct {
	DeviceID   string    `json:"device_id"`
	Found      bool      `json:"found"`
	Ts         time.Time `json:"ts"`
	AmbTempC   *float64  `json:"amb_temp_c"`
	AmbHumPct  *float64  `json:"amb_hum_pct"`
	ProbeTempC *float64  `json:"probe_temp_c"`
}
