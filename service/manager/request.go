package manager

import (
	"errors"
	"fmt"

	"github.com/viant/procsim/model/process"
)

var (
	// ErrProcessNotFound is returned for PIDs that are not in the table.
	ErrProcessNotFound = errors.New("manager: process not found")
	// ErrTableFull is returned when every table slot is taken.
	ErrTableFull = errors.New("manager: process table full")
	// ErrInvalidRequest is returned for malformed creation requests.
	ErrInvalidRequest = errors.New("manager: invalid request")
)

// Request describes a process to create.
type Request struct {
	Priority      int
	ExecutionTime int
	MemoryNeeded  int
	Devices       process.Devices
	CreatedAt     int
}

// Validate checks the request bounds.
func (r *Request) Validate() error {
	switch {
	case r.Priority < process.RealTimePriority || r.Priority > process.LowestPriority:
		return fmt.Errorf("%w: priority %d outside [%d,%d]", ErrInvalidRequest, r.Priority, process.RealTimePriority, process.LowestPriority)
	case r.ExecutionTime <= 0:
		return fmt.Errorf("%w: execution time %d", ErrInvalidRequest, r.ExecutionTime)
	case r.MemoryNeeded <= 0:
		return fmt.Errorf("%w: memory %d", ErrInvalidRequest, r.MemoryNeeded)
	}
	return nil
}
