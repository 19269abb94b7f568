package event

import (
	"time"

	"github.com/viant/procsim/internal/clock"
)

// Type names a process lifecycle event.
type Type string

const (
	Created    Type = "created"
	Ready      Type = "ready"
	Blocked    Type = "blocked"
	Unblocked  Type = "unblocked"
	Dispatched Type = "dispatched"
	Preempted  Type = "preempted"
	Terminated Type = "terminated"
	Rejected   Type = "rejected"
)

// Context identifies the process and the simulated tick of an event.
type Context struct {
	PID    int    `json:"pid" yaml:"pid"`
	Type   Type   `json:"type" yaml:"type"`
	Tick   int    `json:"tick" yaml:"tick"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type Event[T any] struct {
	Context   *Context  `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
	Data      T         `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
