// Package report captures simulator state and renders it as text or YAML.
// Rendered snapshots double as golden files: Diff compares two of them.
package report

import (
	"context"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/memory"
	"github.com/viant/procsim/service/resource"
	"github.com/viant/procsim/service/scheduler"
)

// Source exposes the state a snapshot is built from.
type Source interface {
	Processes() []*process.PCB
	Pending() []process.PID
	Records(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Record, error)
	Memory() *memory.Service
	Resources() *resource.Service
	Scheduler() *scheduler.Service
}

// Process is a row of the process table.
type Process struct {
	PID              process.PID `json:"pid" yaml:"pid"`
	StartingPriority int         `json:"startingPriority" yaml:"startingPriority"`
	Priority         int         `json:"priority" yaml:"priority"`
	State            string      `json:"state" yaml:"state"`
	TimeLeft         int         `json:"timeLeft" yaml:"timeLeft"`
	Offset           int         `json:"offset" yaml:"offset"`
	Blocks           int         `json:"blocks" yaml:"blocks"`
}

// Devices lists unit holders of one device class, NoPID marking a free unit.
type Devices struct {
	Kind    string        `json:"kind" yaml:"kind"`
	Holders []process.PID `json:"holders" yaml:"holders,flow"`
}

// Counters are the run counters at snapshot time.
type Counters struct {
	Created     int     `json:"created" yaml:"created"`
	Rejected    int     `json:"rejected" yaml:"rejected"`
	Blocked     int     `json:"blocked" yaml:"blocked"`
	Terminated  int     `json:"terminated" yaml:"terminated"`
	Dispatches  int     `json:"dispatches" yaml:"dispatches"`
	Preemptions int     `json:"preemptions" yaml:"preemptions"`
	IdleTicks   int     `json:"idleTicks" yaml:"idleTicks"`
	Ticks       int     `json:"ticks" yaml:"ticks"`
	Utilisation float64 `json:"utilisation" yaml:"utilisation"`
}

// Snapshot is the machine state at a tick.
type Snapshot struct {
	Tick      int               `json:"tick" yaml:"tick"`
	Processes []*Process        `json:"processes" yaml:"processes"`
	Queues    [][]process.PID   `json:"queues" yaml:"queues,flow"`
	Pending   []process.PID     `json:"pending" yaml:"pending,flow"`
	Memory    []memory.Usage    `json:"memory" yaml:"memory"`
	Devices   []*Devices        `json:"devices" yaml:"devices"`
	Records   []*process.Record `json:"records" yaml:"records"`
	Counters  *Counters         `json:"counters,omitempty" yaml:"counters,omitempty"`
}

// Take builds a snapshot of source at tick. Counters are optional.
func Take(ctx context.Context, tick int, source Source, counters *progress.Progress) (*Snapshot, error) {
	records, err := source.Records(ctx)
	if err != nil {
		return nil, err
	}
	ret := &Snapshot{
		Tick:    tick,
		Queues:  source.Scheduler().Queues(),
		Pending: source.Pending(),
		Memory:  source.Memory().Usage(),
		Records: records,
	}
	for _, pcb := range source.Processes() {
		row := &Process{
			PID:              pcb.PID,
			StartingPriority: pcb.StartingPriority,
			Priority:         pcb.Priority,
			State:            pcb.State.String(),
			TimeLeft:         pcb.TimeLeft,
			Offset:           -1,
		}
		if segment := pcb.Memory.Segment; segment != nil {
			row.Offset, row.Blocks = segment.Offset, segment.Blocks
		}
		ret.Processes = append(ret.Processes, row)
	}
	holders := source.Resources().Snapshot()
	for _, kind := range resource.Kinds {
		ret.Devices = append(ret.Devices, &Devices{Kind: kind.String(), Holders: holders[kind.String()]})
	}
	if counters != nil {
		ret.Counters = &Counters{
			Created:     counters.Created,
			Rejected:    counters.Rejected,
			Blocked:     counters.Blocked,
			Terminated:  counters.Terminated,
			Dispatches:  counters.Dispatches,
			Preemptions: counters.Preemptions,
			IdleTicks:   counters.IdleTicks,
			Ticks:       counters.Ticks,
			Utilisation: counters.Utilisation(),
		}
	}
	return ret, nil
}
