package scheduler

import (
	"log/slog"

	"github.com/viant/procsim/service/dispatcher"
)

// Option customises the scheduler.
type Option func(s *Service)

// WithConfig sets quanta and aging threshold.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithCPU sets the CPU used by Dispatch.
func WithCPU(cpu *dispatcher.CPU) Option {
	return func(s *Service) {
		s.cpu = cpu
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
