package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/dispatcher"
	"github.com/viant/procsim/tracing"
)

var (
	// ErrNotReady is returned when a non ready process is offered to a queue.
	ErrNotReady = errors.New("scheduler: process not ready")
	// ErrAlreadyQueued is returned when a PID already sits in a queue.
	ErrAlreadyQueued = errors.New("scheduler: process already queued")
)

// levels is the number of priority queues, 0 through 5.
const levels = process.LowestPriority + 1

// agingFloor is the first level subject to aging.
const agingFloor = 2

// Table resolves PIDs into control blocks. The scheduler reads and updates
// priority and state but never adds or removes table entries.
type Table interface {
	Lookup(pid process.PID) (*process.PCB, error)
}

// Selection is the process picked for the next dispatch.
type Selection struct {
	PCB       *process.PCB
	RunLength int
}

// Service is a multi-level feedback queue scheduler.
type Service struct {
	config Config
	table  Table
	cpu    *dispatcher.CPU
	logger *slog.Logger
	queues [levels][]process.PID
	queued map[process.PID]int
	waited map[process.PID]int
}

// AddReady appends a ready process to the queue of its current priority.
func (s *Service) AddReady(pcb *process.PCB) error {
	if pcb.Priority < process.RealTimePriority || pcb.Priority > process.LowestPriority {
		panic(fmt.Sprintf("scheduler: pid %d priority %d out of range", pcb.PID, pcb.Priority))
	}
	if !pcb.State.IsReady() {
		return fmt.Errorf("%w: pid %d is %v", ErrNotReady, pcb.PID, pcb.State)
	}
	if level, ok := s.queued[pcb.PID]; ok {
		return fmt.Errorf("%w: pid %d at level %d", ErrAlreadyQueued, pcb.PID, level)
	}
	s.queues[pcb.Priority] = append(s.queues[pcb.Priority], pcb.PID)
	s.queued[pcb.PID] = pcb.Priority
	s.waited[pcb.PID] = 0
	return nil
}

// Next pops the head of the highest priority non empty queue. Real-time
// processes run to completion; others get min(quantum, time left).
func (s *Service) Next() (*Selection, bool) {
	for level := range s.queues {
		for len(s.queues[level]) > 0 {
			pid := s.queues[level][0]
			s.queues[level] = s.queues[level][1:]
			delete(s.queued, pid)
			delete(s.waited, pid)
			pcb, err := s.table.Lookup(pid)
			if err != nil {
				s.logger.Warn("dropping stale queue entry", "pid", pid, "err", err)
				continue
			}
			runLength := pcb.TimeLeft
			if level != process.RealTimePriority {
				runLength = min(s.config.Quantum[level], pcb.TimeLeft)
			}
			return &Selection{PCB: pcb, RunLength: runLength}, true
		}
	}
	return nil, false
}

// ApplyAging credits elapsed ticks to every process waiting in levels 2..5
// and promotes the ones that reached the threshold by one level.
func (s *Service) ApplyAging(elapsed int) {
	if elapsed <= 0 {
		return
	}
	for level := agingFloor; level < levels; level++ {
		var stay []process.PID
		for _, pid := range s.queues[level] {
			s.waited[pid] += elapsed
			if s.waited[pid] < s.config.AgingThreshold {
				stay = append(stay, pid)
				continue
			}
			s.promote(pid, level-1)
		}
		s.queues[level] = stay
	}
}

func (s *Service) promote(pid process.PID, level int) {
	s.waited[pid] = 0
	s.queued[pid] = level
	s.queues[level] = append(s.queues[level], pid)
	if pcb, err := s.table.Lookup(pid); err == nil {
		pcb.Priority = level
	}
	s.logger.Debug("aging promotion", "pid", pid, "priority", level)
}

// Requeue puts an unfinished process back, one level closer to 1. It reports
// whether the process was queued.
func (s *Service) Requeue(pcb *process.PCB) (bool, error) {
	if pcb.Finished() {
		return false, nil
	}
	if pcb.Priority > process.HighestSharedPriority {
		pcb.Priority--
	}
	if err := s.AddReady(pcb); err != nil {
		return false, err
	}
	return true, nil
}

// Dispatch runs the selection on the CPU. Unfinished processes return to
// READY, are aged with the executed ticks and requeued. Finished ones stay
// RUNNING for the caller to terminate.
func (s *Service) Dispatch(ctx context.Context, selection *Selection, interrupt dispatcher.Interrupt) (outcome dispatcher.Outcome, err error) {
	pcb := selection.PCB
	_, span := tracing.StartSpan(ctx, "dispatch", "INTERNAL")
	span.WithInt("pid", int(pcb.PID)).WithInt("priority", pcb.Priority).WithInt("runLength", selection.RunLength)
	defer func() { tracing.EndSpan(span, err) }()

	if err = pcb.Transition(process.Running()); err != nil {
		return outcome, err
	}
	outcome = s.cpu.Run(pcb, selection.RunLength, interrupt)
	span.WithInt("executed", outcome.Executed).WithAttributes(map[string]string{"result": outcome.Result.String()})
	if outcome.Result == dispatcher.Preempted {
		span.AddEvent("preempted", map[string]int{"executed": outcome.Executed})
	}
	s.ApplyAging(outcome.Executed)
	if pcb.Finished() {
		return outcome, nil
	}
	if err = pcb.Transition(process.Ready()); err != nil {
		return outcome, err
	}
	_, err = s.Requeue(pcb)
	return outcome, err
}

// ShouldPreempt reports whether arriving must take the CPU from running.
func (s *Service) ShouldPreempt(running, arriving *process.PCB) bool {
	if running == nil || arriving == nil || !running.Preemptable {
		return false
	}
	return arriving.State.IsReady() && arriving.StartingPriority < running.Priority
}

// Remove drops pid from its queue. It reports whether pid was queued.
func (s *Service) Remove(pid process.PID) bool {
	level, ok := s.queued[pid]
	if !ok {
		return false
	}
	queue := s.queues[level]
	for i, candidate := range queue {
		if candidate == pid {
			s.queues[level] = append(queue[:i:i], queue[i+1:]...)
			break
		}
	}
	delete(s.queued, pid)
	delete(s.waited, pid)
	return true
}

// Queue returns a copy of the given level.
func (s *Service) Queue(level int) []process.PID {
	if level < 0 || level >= levels {
		return nil
	}
	return append([]process.PID(nil), s.queues[level]...)
}

// Queues returns a copy of every level.
func (s *Service) Queues() [][]process.PID {
	ret := make([][]process.PID, levels)
	for level := range s.queues {
		ret[level] = s.Queue(level)
	}
	return ret
}

// Len returns the number of queued processes.
func (s *Service) Len() int {
	return len(s.queued)
}

// Waited returns the aging counter of pid.
func (s *Service) Waited(pid process.PID) int {
	return s.waited[pid]
}

// Quantum returns the run length of a level, zero for real-time.
func (s *Service) Quantum(level int) int {
	return s.config.Quantum[level]
}

// New creates a scheduler reading control blocks from table.
func New(table Table, opts ...Option) *Service {
	ret := &Service{
		config: DefaultConfig(),
		table:  table,
		queued: make(map[process.PID]int),
		waited: make(map[process.PID]int),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.cpu == nil {
		ret.cpu = dispatcher.New()
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}
