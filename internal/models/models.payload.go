// FilePath: internal/models/models.payload.go
package models

// DevicePayload is the request body devices POST to the ingest endpoint.
// All numeric fields are pointers so that JSON null and an absent key both
// decode to nil; the two are treated identically downstream.
type DevicePayload struct {
	DeviceID string `json:"device_id"`
	TsMs     *int64 `json:"ts_ms"`

	Ambient *AmbientReading `json:"amb"`
	Probe   *ProbeReading   `json:"probe"`
	GPS     *GPSReading     `json:"gps"`
	Battery *BatteryReading `json:"bat"`
}

// AmbientReading carries the ambient temperature/humidity sensor block.
// OK is required when the block is present; false marks a faulted sensor.
type AmbientReading struct {
	OK     *bool    `json:"ok"`
	TempC  *float64 `json:"temp_c"`
	HumPct *float64 `json:"hum_pct"`
}

// ProbeReading carries the probe temperature sensor block.
type ProbeReading struct {
	OK    *bool    `json:"ok"`
	TempC *float64 `json:"temp_c"`
}

// GPSReading carries the GPS fix block. Valid is required when the block
// is present; false means no fix. Lng is a firmware-side alias for Lon and
// is folded into Lon during normalization.
type GPSReading struct {
	Valid  *bool    `json:"valid"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Lng    *float64 `json:"lng"`
	AltM   *float64 `json:"alt_m"`
	VelKmh *float64 `json:"vel_kmh"`
	Sats   *int     `json:"sats"`
	Hdop   *float64 `json:"hdop"`
}

// BatteryReading carries the battery block. Pct must be in [0,100].
type BatteryReading struct {
	V   *float64 `json:"v"`
	Pct *int     `json:"pct"`
}

// Normalize resolves field aliases in place. It runs exactly once at the
// validation boundary and is idempotent: Lon takes precedence when both
// Lon and Lng are set, so a second pass never changes an already-resolved
// payload.
func (p *DevicePayload) Normalize() {
	if p.GPS != nil && p.GPS.Lon == nil && p.GPS.Lng != nil {
		p.GPS.Lon = p.GPS.Lng
	}
}

// FieldErrors maps a field path (e.g. "gps.valid") to its error messages.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Empty reports whether no field errors were recorded.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}
