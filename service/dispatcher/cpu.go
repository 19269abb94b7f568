package dispatcher

import (
	"fmt"
	"io"

	"github.com/viant/procsim/model/process"
)

// Result tells why a CPU run stopped.
type Result int

const (
	QuantumExpired Result = iota
	Finished
	Preempted
)

func (r Result) String() string {
	switch r {
	case QuantumExpired:
		return "quantum_expired"
	case Finished:
		return "finished"
	case Preempted:
		return "preempted"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Outcome summarises a CPU run.
type Outcome struct {
	Executed int
	Result   Result
}

// Interrupt is called after every executed instruction. Returning true stops
// the run when the process still has quantum and work left.
type Interrupt func(executed int) bool

// Option customises the CPU.
type Option func(c *CPU)

// WithListener overrides the listener invoked before every run. Passing nil
// disables the callback entirely.
func WithListener(l Listener) Option {
	return func(c *CPU) {
		c.listener = l
	}
}

// WithTrace writes an instruction trace to w.
func WithTrace(w io.Writer) Option {
	return func(c *CPU) {
		c.trace = w
	}
}

// CPU executes a process one instruction at a time.
type CPU struct {
	listener Listener
	trace    io.Writer
}

// Run executes at most units instructions of pcb.
func (c *CPU) Run(pcb *process.PCB, units int, interrupt Interrupt) Outcome {
	if units > pcb.TimeLeft {
		units = pcb.TimeLeft
	}
	if c.listener != nil {
		c.listener(pcb, units)
	}
	if pcb.TimeLeft == pcb.TimeNeeded {
		c.printf("P%d STARTED\n", pcb.PID)
	}
	outcome := Outcome{Result: QuantumExpired}
	for outcome.Executed < units {
		pcb.Step()
		outcome.Executed++
		c.printf("P%d instruction %d\n", pcb.PID, pcb.PC)
		stop := interrupt != nil && interrupt(outcome.Executed)
		if pcb.Finished() {
			outcome.Result = Finished
			break
		}
		if stop && outcome.Executed < units {
			outcome.Result = Preempted
			break
		}
	}
	if outcome.Result == Finished {
		c.printf("P%d return SIGINT\n", pcb.PID)
	}
	return outcome
}

func (c *CPU) printf(format string, args ...interface{}) {
	if c.trace == nil {
		return
	}
	_, _ = fmt.Fprintf(c.trace, format, args...)
}

// New creates a CPU.
func New(opts ...Option) *CPU {
	ret := &CPU{}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
