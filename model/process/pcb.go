package process

import "fmt"

// PID identifies a process. PIDs grow monotonically and are never reused.
type PID int

// NoPID marks a free memory block or device unit.
const NoPID PID = -1

const (
	// RealTimePriority is the only non preemptable priority.
	RealTimePriority = 0
	// HighestSharedPriority is the best level a time-shared process can reach.
	HighestSharedPriority = 1
	// LowestPriority is the worst level.
	LowestPriority = 5
)

// Segment is a contiguous run of memory blocks held by a process.
type Segment struct {
	Offset int `json:"offset" yaml:"offset"`
	Blocks int `json:"blocks" yaml:"blocks"`
}

// Memory describes what a process asked for and what it holds.
type Memory struct {
	Needed  int      `json:"needed" yaml:"needed"`
	Segment *Segment `json:"segment,omitempty" yaml:"segment,omitempty"`
}

// Devices lists the device classes a process needs, one unit per class.
type Devices struct {
	Printer bool `json:"printer,omitempty" yaml:"printer,omitempty"`
	Scanner bool `json:"scanner,omitempty" yaml:"scanner,omitempty"`
	Modem   bool `json:"modem,omitempty" yaml:"modem,omitempty"`
	Disk    bool `json:"disk,omitempty" yaml:"disk,omitempty"`
}

// UsesIO reports whether any device is needed.
func (d Devices) UsesIO() bool {
	return d.Printer || d.Scanner || d.Modem || d.Disk
}

// PCB is the process control block.
type PCB struct {
	PID              PID     `json:"pid" yaml:"pid"`
	StartingPriority int     `json:"startingPriority" yaml:"startingPriority"`
	Priority         int     `json:"priority" yaml:"priority"`
	State            State   `json:"-" yaml:"-"`
	TimeNeeded       int     `json:"timeNeeded" yaml:"timeNeeded"`
	TimeLeft         int     `json:"timeLeft" yaml:"timeLeft"`
	PC               int     `json:"pc" yaml:"pc"`
	Preemptable      bool    `json:"preemptable" yaml:"preemptable"`
	Memory           Memory  `json:"memory" yaml:"memory"`
	Devices          Devices `json:"devices" yaml:"devices"`
	CreatedAt        int     `json:"createdAt" yaml:"createdAt"`
}

// New creates a ready PCB.
func New(pid PID, priority, timeNeeded, memoryNeeded int, devices Devices, createdAt int) *PCB {
	return &PCB{
		PID:              pid,
		StartingPriority: priority,
		Priority:         priority,
		State:            Ready(),
		TimeNeeded:       timeNeeded,
		TimeLeft:         timeNeeded,
		Preemptable:      priority != RealTimePriority,
		Memory:           Memory{Needed: memoryNeeded},
		Devices:          devices,
		CreatedAt:        createdAt,
	}
}

// IsRealTime reports whether the process runs at priority 0.
func (p *PCB) IsRealTime() bool {
	return p.StartingPriority == RealTimePriority
}

// Finished reports whether the process has no work left.
func (p *PCB) Finished() bool {
	return p.TimeLeft <= 0
}

// Transition moves the PCB to next when the lifecycle allows it.
func (p *PCB) Transition(next State) error {
	if !p.State.canMove(next) {
		return fmt.Errorf("%w: pid %d %v -> %v", ErrIllegalTransition, p.PID, p.State, next)
	}
	p.State = next
	return nil
}

// Step executes a single instruction.
func (p *PCB) Step() {
	p.PC++
	p.TimeLeft--
}

// Clone returns a detached copy.
func (p *PCB) Clone() PCB {
	ret := *p
	if p.Memory.Segment != nil {
		segment := *p.Memory.Segment
		ret.Memory.Segment = &segment
	}
	return ret
}
