package procsim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/arrival"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dispatcher"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/filesystem"
	"github.com/viant/procsim/service/manager"
	"github.com/viant/procsim/service/memory"
	"github.com/viant/procsim/service/resource"
	"github.com/viant/procsim/service/scheduler"
)

// Service wires the simulator components from a Config. Each call to
// NewSimulator builds a fresh machine, so runs never share state.
type Service struct {
	config         *Config
	logger         *slog.Logger
	eventHandlers  []event.Handler
	listener       dispatcher.Listener
	trace          io.Writer
	onProgress     func(progress.Progress)
	recordsFactory func() dao.Service[process.PID, process.Record]
	fs             afs.Service
	baseURL        string
	fsOptions      []storage.Option
	initErrors     []error
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.recordsFactory == nil {
		s.recordsFactory = func() dao.Service[process.PID, process.Record] { return manager.NewRecordStore() }
	}
	if err := s.config.Validate(); err != nil {
		s.initErrors = append(s.initErrors, err)
	}
	return errors.Join(s.initErrors...)
}

// Config returns the active configuration.
func (s *Service) Config() *Config {
	return s.config
}

// NewSimulator builds a machine in its initial state: empty table, empty
// queues, free memory and devices, tick 0.
func (s *Service) NewSimulator() *Simulator {
	var cpuOptions []dispatcher.Option
	if s.listener != nil {
		cpuOptions = append(cpuOptions, dispatcher.WithListener(s.listener))
	}
	if s.trace != nil {
		cpuOptions = append(cpuOptions, dispatcher.WithTrace(s.trace))
	}
	table := manager.NewTable(s.config.Table.Capacity)
	sched := scheduler.New(table,
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithCPU(dispatcher.New(cpuOptions...)),
		scheduler.WithLogger(s.logger))
	events := event.New(event.WithLogger(s.logger))
	for _, handler := range s.eventHandlers {
		events.Subscribe(handler)
	}
	ret := newSimulator(s.config.Simulation, events, s.onProgress, s.logger)
	ret.manager = manager.New(table, sched,
		memory.New(s.config.Memory),
		resource.New(s.config.Resources),
		manager.WithEvents(events),
		manager.WithRecords(s.recordsFactory()),
		manager.WithClock(ret.clock),
		manager.WithLogger(s.logger))
	return ret
}

// LoadArrivals reads an arrival declaration.
func (s *Service) LoadArrivals(ctx context.Context, URL string) (*arrival.Feed, error) {
	return arrival.NewLoader(s.fs, s.baseURL, s.fsOptions...).Load(ctx, URL)
}

// LoadFileSystem reads a file-system declaration.
func (s *Service) LoadFileSystem(ctx context.Context, URL string) (*filesystem.Declaration, error) {
	return filesystem.NewLoader(s.fs, s.baseURL, s.fsOptions...).Load(ctx, URL)
}

// Run simulates feed on a fresh machine.
func (s *Service) Run(ctx context.Context, feed *arrival.Feed) (*Simulator, *Result, error) {
	simulator := s.NewSimulator()
	result, err := simulator.Run(ctx, feed)
	return simulator, result, err
}

// RunFileSystem applies declaration against the processes known to
// simulator. Real-time means a starting priority of 0.
func (s *Service) RunFileSystem(ctx context.Context, simulator *Simulator, declaration *filesystem.Declaration) (*filesystem.Service, []*filesystem.Result, error) {
	directory, err := simulator.Directory(ctx)
	if err != nil {
		return nil, nil, err
	}
	fs := filesystem.New(declaration.TotalBlocks, directory, filesystem.WithLogger(s.logger))
	if err = fs.Load(declaration.Segments); err != nil {
		return nil, nil, fmt.Errorf("failed to place initial files: %w", err)
	}
	return fs, fs.Execute(declaration.Operations), nil
}

// New creates a service.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
