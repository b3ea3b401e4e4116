// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Config holds monitoring configuration
type Config struct {
	LogLevel string
}

// Service provides lightweight in-process event accounting. Events are
// logged and counted; totals are exposed on the health payload.
type Service struct {
	config Config

	mu     sync.Mutex
	counts map[string]int64
}

// NewService creates a new monitoring service
func NewService(config Config) *Service {
	return &Service{
		config: config,
		counts: make(map[string]int64),
	}
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	ts := time.Now()

	s.mu.Lock()
	s.counts[eventName]++
	s.mu.Unlock()

	nuts.L.Debugf("[Monitoring] Event %s recorded at %v with labels: %v", eventName, ts, labels)
}

// EventTotals returns a copy of the per-event counters.
func (s *Service) EventTotals() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[string]int64, len(s.counts))
	for name, count := range s.counts {
		totals[name] = count
	}
	return totals
}
