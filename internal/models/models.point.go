// FilePath: internal/models/models.point.go
package models

import "time"

// Measurement names used in the time-series store.
const (
	MeasurementTelemetry = "telemetry"
	MeasurementGPS       = "gps"
)

// TagDeviceID is the only tag key written on any point.
const TagDeviceID = "device_id"

// Point is a single time-series sample ready for the gateway. Fields is
// never empty: the builder drops points with no qualifying fields instead
// of emitting them.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]interface{}
	Time        time.Time
}
