package procsim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/report"
	"github.com/viant/procsim/service/arrival"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dispatcher"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/filesystem"
	"github.com/viant/procsim/service/manager"
	"github.com/viant/procsim/service/scheduler"
)

// Result summarises a run.
type Result struct {
	RunID     string            `json:"runId" yaml:"runId"`
	FinalTime int               `json:"finalTime" yaml:"finalTime"`
	Rejected  []process.PID     `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Stalled   []process.PID     `json:"stalled,omitempty" yaml:"stalled,omitempty"`
	TimedOut  bool              `json:"timedOut,omitempty" yaml:"timedOut,omitempty"`
	Backlog   int               `json:"backlog,omitempty" yaml:"backlog,omitempty"`
	Progress  progress.Progress `json:"-" yaml:"-"`
}

// IsStalled reports whether the run ended with every live process blocked.
func (r *Result) IsStalled() bool {
	return len(r.Stalled) > 0
}

// Simulator is the time-stepped dispatch loop. It is single threaded; one
// instance runs one feed.
type Simulator struct {
	manager    *manager.Service
	clock      *clock.Ticks
	events     *event.Service
	config     SimulationConfig
	onProgress func(progress.Progress)
	logger     *slog.Logger
	backlog    []*arrival.Descriptor
	result     *Result
}

// Run drives feed until every process has exited, the clock reaches the
// configured limit or the remaining processes can never run.
func (s *Simulator) Run(ctx context.Context, feed *arrival.Feed) (*Result, error) {
	if s.result != nil {
		return nil, fmt.Errorf("simulator already ran %v", s.result.RunID)
	}
	runID := idgen.New()
	ctx, tracker := progress.WithNewTracker(ctx, runID, s.onProgress)
	s.result = &Result{RunID: runID}
	s.logger.Info("simulation started", "run", runID, "arrivals", feed.Len())

	err := s.loop(ctx, feed)
	s.result.FinalTime = s.clock.Now()
	s.result.Backlog = len(s.backlog)
	s.result.Progress = tracker.Snapshot()
	if err != nil {
		return s.result, err
	}
	s.logger.Info("simulation finished", "run", runID, "tick", s.result.FinalTime,
		"terminated", s.result.Progress.Terminated, "rejected", len(s.result.Rejected), "stalled", len(s.result.Stalled))
	return s.result, nil
}

func (s *Simulator) loop(ctx context.Context, feed *arrival.Feed) error {
	sched := s.manager.Scheduler()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.admit(ctx, feed); err != nil {
			return err
		}
		if _, err := s.events.Drain(ctx); err != nil {
			return err
		}
		if feed.Done() && len(s.backlog) == 0 && s.manager.Live() == 0 {
			return nil
		}
		if s.config.MaxTime > 0 && s.clock.Now() >= s.config.MaxTime {
			s.result.TimedOut = true
			s.logger.Warn("simulation reached time limit", "tick", s.clock.Now(), "live", s.manager.Live())
			return nil
		}
		selection, ok := sched.Next()
		if !ok {
			if feed.Done() && len(s.backlog) == 0 {
				s.result.Stalled = s.blocked()
				s.logger.Warn("simulation stalled", "tick", s.clock.Now(), "blocked", len(s.result.Stalled))
				return nil
			}
			s.clock.Advance(1)
			progress.UpdateCtx(ctx, progress.Delta{Ticks: 1, IdleTicks: 1})
			continue
		}
		if err := s.dispatch(ctx, sched, feed, selection); err != nil {
			return err
		}
	}
}

func (s *Simulator) dispatch(ctx context.Context, sched *scheduler.Service, feed *arrival.Feed, selection *scheduler.Selection) error {
	running := selection.PCB
	startedAt := s.clock.Now()
	var admitErr error
	interrupt := func(executed int) bool {
		s.clock.Advance(1)
		progress.UpdateCtx(ctx, progress.Delta{Ticks: 1})
		admitted, err := s.admit(ctx, feed)
		if err != nil {
			admitErr = err
			return true
		}
		preempt := false
		for _, arriving := range admitted {
			if sched.ShouldPreempt(running, arriving) {
				s.logger.Debug("preemption on arrival", "pid", running.PID, "by", arriving.PID, "tick", s.clock.Now())
				preempt = true
			}
		}
		return preempt
	}
	s.events.Publish(ctx, event.Dispatched, startedAt, running)
	outcome, err := sched.Dispatch(ctx, selection, interrupt)
	if err != nil {
		return fmt.Errorf("failed to dispatch pid %d: %w", running.PID, err)
	}
	if admitErr != nil {
		return admitErr
	}
	preempted := outcome.Result == dispatcher.Preempted
	s.manager.NoteDispatch(ctx, running.PID, startedAt, preempted)
	if preempted {
		s.events.Publish(ctx, event.Preempted, s.clock.Now(), running)
	}
	if outcome.Result == dispatcher.Finished {
		if err = s.manager.Terminate(ctx, running.PID); err != nil {
			return fmt.Errorf("failed to terminate pid %d: %w", running.PID, err)
		}
	}
	_, err = s.events.Drain(ctx)
	return err
}

// admit creates every process due at the current tick, oldest backlog first.
// A full table parks the remaining arrivals in the backlog until a slot
// frees up.
func (s *Simulator) admit(ctx context.Context, feed *arrival.Feed) ([]*process.PCB, error) {
	due := append(s.backlog, feed.FetchUntil(s.clock.Now())...)
	s.backlog = nil
	var admitted []*process.PCB
	for i, descriptor := range due {
		pcb, err := s.manager.Create(ctx, &manager.Request{
			Priority:      descriptor.Priority,
			ExecutionTime: descriptor.ExecutionTime,
			MemoryNeeded:  descriptor.MemoryNeeded,
			Devices:       descriptor.Devices(),
			CreatedAt:     descriptor.CreatedAt,
		})
		if errors.Is(err, manager.ErrTableFull) {
			s.backlog = append(s.backlog, due[i:]...)
			s.logger.Debug("process table full", "tick", s.clock.Now(), "waiting", len(s.backlog))
			break
		}
		if err != nil {
			return admitted, fmt.Errorf("failed to create process declared on line %d: %w", descriptor.Line, err)
		}
		if reason, ok := pcb.State.Reason(); ok && reason == process.TooLargeMemRequest {
			if err = s.manager.Reject(ctx, pcb.PID); err != nil {
				return admitted, err
			}
			s.result.Rejected = append(s.result.Rejected, pcb.PID)
			s.logger.Info("process rejected", "pid", pcb.PID, "memory", descriptor.MemoryNeeded)
			continue
		}
		admitted = append(admitted, pcb)
	}
	return admitted, nil
}

func (s *Simulator) blocked() []process.PID {
	var ret []process.PID
	for _, pcb := range s.manager.Processes() {
		if pcb.State.IsBlocked() {
			ret = append(ret, pcb.PID)
		}
	}
	return ret
}

// Now returns the current tick.
func (s *Simulator) Now() int {
	return s.clock.Now()
}

// Manager returns the process manager.
func (s *Simulator) Manager() *manager.Service {
	return s.manager
}

// Snapshot captures the machine state.
func (s *Simulator) Snapshot(ctx context.Context) (*report.Snapshot, error) {
	var counters *progress.Progress
	if s.result != nil {
		counters = &s.result.Progress
	}
	return report.Take(ctx, s.clock.Now(), s.manager, counters)
}

// Directory lists every process the run has seen, live or terminated, for
// file-system permission checks.
func (s *Simulator) Directory(ctx context.Context) (filesystem.Processes, error) {
	records, err := s.manager.Records(ctx, dao.NewParameter("rejected", false))
	if err != nil {
		return nil, err
	}
	ret := directory{}
	for _, record := range records {
		ret[record.PID] = record.IsRealTime()
	}
	for _, pcb := range s.manager.Processes() {
		ret[pcb.PID] = pcb.IsRealTime()
	}
	return ret, nil
}

// directory maps known PIDs to their real-time flag.
type directory map[process.PID]bool

func (d directory) Known(pid process.PID) bool {
	_, ok := d[pid]
	return ok
}

func (d directory) RealTime(pid process.PID) bool {
	return d[pid]
}

func newSimulator(config SimulationConfig, events *event.Service, onProgress func(progress.Progress), logger *slog.Logger) *Simulator {
	return &Simulator{
		clock:      &clock.Ticks{},
		events:     events,
		config:     config,
		onProgress: onProgress,
		logger:     logger,
	}
}
