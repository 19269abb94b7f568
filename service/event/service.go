package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/messaging"
	"github.com/viant/procsim/service/messaging/memory"
)

// Handler receives lifecycle events in publication order.
type Handler func(*Event[process.PCB])

// Option customises the event service.
type Option func(s *Service)

// WithQueue overrides the default in-memory queue.
func WithQueue(queue messaging.Queue[Event[process.PCB]]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithHandler registers a handler.
func WithHandler(handler Handler) Option {
	return func(s *Service) {
		s.handlers = append(s.handlers, handler)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service buffers lifecycle events and delivers them when drained, so
// handlers observe a consistent simulator state.
type Service struct {
	queue     messaging.Queue[Event[process.PCB]]
	publisher *Publisher[process.PCB]
	handlers  []Handler
	logger    *slog.Logger
	mux       sync.RWMutex
}

// Publish records an event about pcb at tick.
func (s *Service) Publish(ctx context.Context, eventType Type, tick int, pcb *process.PCB) {
	if s == nil || pcb == nil {
		return
	}
	eCtx := &Context{PID: int(pcb.PID), Type: eventType, Tick: tick}
	if reason, ok := pcb.State.Reason(); ok {
		eCtx.Reason = reason.String()
	}
	if err := s.publisher.Publish(ctx, NewEvent[process.PCB](eCtx, pcb.Clone())); err != nil {
		s.logger.Warn("failed to publish process event", "pid", pcb.PID, "type", eventType, "err", err)
	}
}

// Subscribe registers a handler.
func (s *Service) Subscribe(handler Handler) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Drain delivers every pending event to the handlers and returns how many
// were delivered.
func (s *Service) Drain(ctx context.Context) (int, error) {
	if s == nil {
		return 0, nil
	}
	s.mux.RLock()
	handlers := s.handlers
	s.mux.RUnlock()
	delivered := 0
	for s.publisher.Pending() > 0 {
		anEvent, err := s.publisher.Consume(ctx)
		if err != nil {
			return delivered, err
		}
		for _, handler := range handlers {
			handler(anEvent)
		}
		delivered++
	}
	return delivered, nil
}

// New creates an event service backed by an in-memory queue by default.
func New(opts ...Option) *Service {
	ret := &Service{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.queue == nil {
		ret.queue = memory.NewQueue[Event[process.PCB]]()
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	ret.publisher = NewPublisher[process.PCB](ret.queue)
	return ret
}
