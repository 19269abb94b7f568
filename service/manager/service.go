package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dao/store"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/memory"
	"github.com/viant/procsim/service/resource"
	"github.com/viant/procsim/service/scheduler"
)

type usage struct {
	firstRunAt  int
	dispatches  int
	preemptions int
}

// Service owns the process table together with the memory and resource
// managers. It is the only component that creates, blocks, unblocks and
// terminates processes.
type Service struct {
	table     *Table
	memory    *memory.Service
	resources *resource.Service
	scheduler *scheduler.Service
	pending   []process.PID
	nextPID   process.PID
	usage     map[process.PID]*usage
	records   dao.Service[process.PID, process.Record]
	events    *event.Service
	clock     Clock
	logger    *slog.Logger
}

// Create admits a new process. The returned PCB is READY and queued, BLOCKED
// and pending, or BLOCKED with TooLargeMemRequest and never retried.
func (s *Service) Create(ctx context.Context, request *Request) (*process.PCB, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if s.table.Full() {
		return nil, fmt.Errorf("%w: capacity %d", ErrTableFull, s.table.Cap())
	}
	pcb := process.New(s.nextPID, request.Priority, request.ExecutionTime, request.MemoryNeeded, request.Devices, request.CreatedAt)
	if _, err := s.table.Insert(pcb); err != nil {
		return nil, err
	}
	s.nextPID++
	s.usage[pcb.PID] = &usage{firstRunAt: -1}
	progress.UpdateCtx(ctx, progress.Delta{Created: 1})
	s.events.Publish(ctx, event.Created, s.clock.Now(), pcb)
	s.logger.Debug("process created", "pid", pcb.PID, "priority", pcb.Priority, "tick", s.clock.Now())

	if s.Resolve(pcb) {
		return pcb, s.enqueue(ctx, pcb, event.Ready)
	}
	reason, _ := pcb.State.Reason()
	progress.UpdateCtx(ctx, progress.Delta{Blocked: 1})
	s.events.Publish(ctx, event.Blocked, s.clock.Now(), pcb)
	s.logger.Debug("process blocked", "pid", pcb.PID, "reason", reason.String())
	if reason != process.TooLargeMemRequest {
		s.pending = append(s.pending, pcb.PID)
	}
	return pcb, nil
}

func (s *Service) enqueue(ctx context.Context, pcb *process.PCB, eventType event.Type) error {
	if err := s.scheduler.AddReady(pcb); err != nil {
		return err
	}
	s.events.Publish(ctx, eventType, s.clock.Now(), pcb)
	return nil
}

// Resolve acquires memory and then devices for pcb and reports whether it is
// READY. Memory already held is kept when devices are busy. Calling it again
// on a READY process changes nothing.
func (s *Service) Resolve(pcb *process.PCB) bool {
	if pcb.State.IsExit() {
		return false
	}
	if pcb.Memory.Segment == nil {
		offset, err := s.memory.Allocate(pcb.PID, pcb.Memory.Needed, pcb.IsRealTime())
		if err != nil {
			reason := process.WaitingForMemory
			if errors.Is(err, memory.ErrRequestTooLarge) {
				reason = process.TooLargeMemRequest
			}
			_ = pcb.Transition(process.Blocked(reason))
			return false
		}
		pcb.Memory.Segment = &process.Segment{Offset: offset, Blocks: pcb.Memory.Needed}
	}
	if pcb.Devices.UsesIO() {
		if err := s.resources.Request(pcb.PID, pcb.Devices); err != nil {
			_ = pcb.Transition(process.Blocked(process.WaitingForIO))
			return false
		}
	}
	if pcb.State.IsBlocked() {
		_ = pcb.Transition(process.Ready())
	}
	return pcb.State.IsReady()
}

// Terminate removes pid, releases everything it holds and gives each pending
// process one more resolution attempt in arrival order.
func (s *Service) Terminate(ctx context.Context, pid process.PID) error {
	return s.terminate(ctx, pid, false)
}

// Reject terminates a process that can never be admitted.
func (s *Service) Reject(ctx context.Context, pid process.PID) error {
	return s.terminate(ctx, pid, true)
}

func (s *Service) terminate(ctx context.Context, pid process.PID, rejected bool) error {
	pcb, err := s.table.Lookup(pid)
	if err != nil {
		return err
	}
	s.scheduler.Remove(pid)
	s.dropPending(pid)
	s.memory.Free(pid)
	pcb.Memory.Segment = nil
	s.resources.Release(pid)
	if err = pcb.Transition(process.Exited()); err != nil {
		return err
	}
	if _, err = s.table.Remove(pid); err != nil {
		return err
	}
	if err = s.records.Save(ctx, s.record(pcb, rejected)); err != nil {
		return err
	}
	delete(s.usage, pid)

	eventType, delta := event.Terminated, progress.Delta{Terminated: 1}
	if rejected {
		eventType, delta = event.Rejected, progress.Delta{Rejected: 1}
	}
	progress.UpdateCtx(ctx, delta)
	s.events.Publish(ctx, eventType, s.clock.Now(), pcb)
	s.logger.Debug("process terminated", "pid", pid, "tick", s.clock.Now(), "rejected", rejected)
	return s.retryPending(ctx)
}

func (s *Service) record(pcb *process.PCB, rejected bool) *process.Record {
	ret := &process.Record{
		PID:              pcb.PID,
		StartingPriority: pcb.StartingPriority,
		FinalPriority:    pcb.Priority,
		TimeNeeded:       pcb.TimeNeeded,
		Executed:         pcb.PC,
		CreatedAt:        pcb.CreatedAt,
		FirstRunAt:       -1,
		FinishedAt:       s.clock.Now(),
		Rejected:         rejected,
	}
	if u, ok := s.usage[pcb.PID]; ok {
		ret.FirstRunAt = u.firstRunAt
		ret.Dispatches = u.dispatches
		ret.Preemptions = u.preemptions
	}
	return ret
}

func (s *Service) retryPending(ctx context.Context) error {
	candidates := s.pending
	s.pending = nil
	for _, pid := range candidates {
		pcb, err := s.table.Lookup(pid)
		if err != nil {
			continue
		}
		if !s.Resolve(pcb) {
			s.pending = append(s.pending, pid)
			s.logger.Debug("process still blocked", "pid", pid, "state", pcb.State, "tick", s.clock.Now())
			continue
		}
		if err = s.enqueue(ctx, pcb, event.Unblocked); err != nil {
			return err
		}
		s.logger.Debug("process unblocked", "pid", pid, "tick", s.clock.Now())
	}
	return nil
}

func (s *Service) dropPending(pid process.PID) {
	for i, candidate := range s.pending {
		if candidate == pid {
			s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
			return
		}
	}
}

// NoteDispatch records that pid got the CPU at tick.
func (s *Service) NoteDispatch(ctx context.Context, pid process.PID, tick int, preempted bool) {
	u, ok := s.usage[pid]
	if !ok {
		return
	}
	if u.firstRunAt < 0 {
		u.firstRunAt = tick
	}
	u.dispatches++
	delta := progress.Delta{Dispatches: 1}
	if preempted {
		u.preemptions++
		delta.Preemptions = 1
	}
	progress.UpdateCtx(ctx, delta)
}

// Lookup returns the control block of a live process.
func (s *Service) Lookup(pid process.PID) (*process.PCB, error) {
	return s.table.Lookup(pid)
}

// Processes returns live processes ordered by PID.
func (s *Service) Processes() []*process.PCB {
	return s.table.All()
}

// Pending returns blocked PIDs awaiting a retry, oldest first.
func (s *Service) Pending() []process.PID {
	return append([]process.PID(nil), s.pending...)
}

// Live returns the number of processes in the table.
func (s *Service) Live() int {
	return s.table.Len()
}

// Full reports whether the table has no free slot.
func (s *Service) Full() bool {
	return s.table.Full()
}

// Records returns accounting records of terminated processes.
func (s *Service) Records(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Record, error) {
	return s.records.List(ctx, parameters...)
}

// Record returns the accounting record of a terminated process.
func (s *Service) Record(ctx context.Context, pid process.PID) (*process.Record, error) {
	return s.records.Load(ctx, pid)
}

func (s *Service) Memory() *memory.Service       { return s.memory }
func (s *Service) Resources() *resource.Service  { return s.resources }
func (s *Service) Scheduler() *scheduler.Service { return s.scheduler }

// NewRecordStore returns the default in-memory accounting store. It
// understands the "realTime" and "rejected" boolean parameters.
func NewRecordStore() *store.MemoryStore[process.PID, process.Record] {
	return store.NewMemoryStore[process.PID, process.Record](
		func(r *process.Record) process.PID { return r.PID },
		store.WithOrder[process.PID, process.Record](func(a, b *process.Record) bool { return a.PID < b.PID }),
		store.WithFilter[process.PID, process.Record](func(r *process.Record, p *dao.Parameter) bool {
			value, ok := p.Value.(bool)
			if !ok {
				return true
			}
			switch p.Name {
			case "realTime":
				return r.IsRealTime() == value
			case "rejected":
				return r.Rejected == value
			}
			return true
		}),
	)
}

// New creates a manager. The scheduler must read from table.
func New(table *Table, sched *scheduler.Service, mem *memory.Service, resources *resource.Service, opts ...Option) *Service {
	ret := &Service{
		table:     table,
		scheduler: sched,
		memory:    mem,
		resources: resources,
		usage:     make(map[process.PID]*usage),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.records == nil {
		ret.records = NewRecordStore()
	}
	if ret.clock == nil {
		ret.clock = &clock.Ticks{}
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}
