// FilePath: internal/ingest/validator.go
package ingest

import (
	"github.com/ranchwatch/telemetry-hub/internal/models"
)

const (
	msgRequired  = "this field is required"
	msgPctRange  = "must be between 0 and 100"
	batteryPctLo = 0
	batteryPctHi = 100
)

// ValidatePayload normalizes and validates a decoded device payload. It
// mutates the payload only to resolve the gps lon/lng alias, then checks
// the required fields. The returned FieldErrors is empty on success.
//
// Validation is a pure transformation: nothing is written anywhere and the
// same payload always yields the same result.
func ValidatePayload(p *models.DevicePayload) models.FieldErrors {
	p.Normalize()

	errs := models.FieldErrors{}

	if p.DeviceID == "" {
		errs.Add("device_id", msgRequired)
	}

	if p.Ambient != nil && p.Ambient.OK == nil {
		errs.Add("amb.ok", msgRequired)
	}
	if p.Probe != nil && p.Probe.OK == nil {
		errs.Add("probe.ok", msgRequired)
	}
	if p.GPS != nil && p.GPS.Valid == nil {
		errs.Add("gps.valid", msgRequired)
	}
	if p.Battery != nil && p.Battery.Pct != nil {
		if *p.Battery.Pct < batteryPctLo || *p.Battery.Pct > batteryPctHi {
			errs.Add("bat.pct", msgPctRange)
		}
	}

	return errs
}
