// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"github.com/ranchwatch/telemetry-hub/internal/config"
	"github.com/ranchwatch/telemetry-hub/internal/errors"
	"github.com/ranchwatch/telemetry-hub/internal/monitoring"
	"github.com/ranchwatch/telemetry-hub/internal/repository"
)

// HubService contains the telemetry repository and service-wide
// dependencies
type HubService struct {
	Telemetry  repository.TelemetryRepository
	Monitoring *monitoring.Service
	Query      config.QueryConfig
}

// New creates a new HubService instance
func New(telemetry repository.TelemetryRepository, mon *monitoring.Service, query config.QueryConfig) *HubService {
	return &HubService{
		Telemetry:  telemetry,
		Monitoring: mon,
		Query:      query,
	}
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Telemetry == nil {
		return ErrMissingDependency("telemetry")
	}
	if s.Monitoring == nil {
		return ErrMissingDependency("monitoring")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}
