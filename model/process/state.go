package process

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a PCB is asked to move to a state its
// current state cannot reach.
var ErrIllegalTransition = errors.New("process: illegal state transition")

// Status is the coarse lifecycle phase of a process.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusBlocked
	StatusExit
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusBlocked:
		return "blocked"
	case StatusExit:
		return "exit"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// BlockedReason explains why a process cannot run.
type BlockedReason int

const (
	ReasonNone BlockedReason = iota
	WaitingForMemory
	WaitingForIO
	TooLargeMemRequest
)

func (r BlockedReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case WaitingForMemory:
		return "waiting_for_memory"
	case WaitingForIO:
		return "waiting_for_io"
	case TooLargeMemRequest:
		return "too_large_mem_request"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// State is a tagged lifecycle state. A blocked state always carries a reason
// and no other state carries one.
type State struct {
	status Status
	reason BlockedReason
}

// Ready returns the ready state. It is also the zero value.
func Ready() State { return State{status: StatusReady} }

// Running returns the running state.
func Running() State { return State{status: StatusRunning} }

// Exited returns the terminal state.
func Exited() State { return State{status: StatusExit} }

// Blocked returns a blocked state with the supplied reason.
func Blocked(reason BlockedReason) State {
	if reason == ReasonNone {
		panic("process: blocked state requires a reason")
	}
	return State{status: StatusBlocked, reason: reason}
}

// Status returns the lifecycle phase.
func (s State) Status() Status { return s.status }

// Reason returns the blocked reason, ok is false for non blocked states.
func (s State) Reason() (BlockedReason, bool) {
	if s.status != StatusBlocked {
		return ReasonNone, false
	}
	return s.reason, true
}

func (s State) IsReady() bool   { return s.status == StatusReady }
func (s State) IsRunning() bool { return s.status == StatusRunning }
func (s State) IsBlocked() bool { return s.status == StatusBlocked }
func (s State) IsExit() bool    { return s.status == StatusExit }

func (s State) String() string {
	if s.status == StatusBlocked {
		return s.status.String() + "(" + s.reason.String() + ")"
	}
	return s.status.String()
}

// canMove reports whether the lifecycle allows moving from s to next.
func (s State) canMove(next State) bool {
	switch s.status {
	case StatusExit:
		return false
	case StatusBlocked:
		return next.status != StatusRunning
	case StatusReady:
		return true
	case StatusRunning:
		return true
	}
	return false
}
