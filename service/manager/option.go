package manager

import (
	"log/slog"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/event"
)

// Clock supplies the current simulated tick.
type Clock interface {
	Now() int
}

// Option customises the manager.
type Option func(s *Service)

// WithEvents publishes lifecycle events to events.
func WithEvents(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithRecords overrides the accounting record store.
func WithRecords(records dao.Service[process.PID, process.Record]) Option {
	return func(s *Service) {
		s.records = records
	}
}

// WithClock sets the tick source used for timestamps.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
