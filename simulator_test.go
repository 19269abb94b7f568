package procsim_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procsim"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/arrival"
)

type dispatch struct {
	pid       process.PID
	runLength int
}

func TestSimulator_Preemption(t *testing.T) {
	ctx := context.Background()
	var dispatches []dispatch
	trace := &strings.Builder{}
	srv, err := procsim.New(
		procsim.WithTrace(trace),
		procsim.WithDispatchListener(func(pcb *process.PCB, runLength int) {
			dispatches = append(dispatches, dispatch{pid: pcb.PID, runLength: runLength})
		}),
	)
	assert.NoError(t, err)

	feed := arrival.NewFeed(
		&arrival.Descriptor{CreatedAt: 0, Priority: 3, ExecutionTime: 5, MemoryNeeded: 10},
		&arrival.Descriptor{CreatedAt: 2, Priority: 1, ExecutionTime: 2, MemoryNeeded: 10},
	)
	simulator, result, err := srv.Run(ctx, feed)
	assert.NoError(t, err)
	assert.Equal(t, 7, result.FinalTime)
	assert.Equal(t, 1, result.Progress.Preemptions)
	assert.Equal(t, 3, result.Progress.Dispatches)
	assert.Equal(t, []dispatch{{pid: 0, runLength: 4}, {pid: 1, runLength: 2}, {pid: 0, runLength: 3}}, dispatches)
	assert.Equal(t, strings.Join([]string{
		"P0 STARTED", "P0 instruction 1", "P0 instruction 2",
		"P1 STARTED", "P1 instruction 1", "P1 instruction 2", "P1 return SIGINT",
		"P0 instruction 3", "P0 instruction 4", "P0 instruction 5", "P0 return SIGINT",
	}, "\n")+"\n", trace.String())

	record, err := simulator.Manager().Record(ctx, 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, record.FinalPriority)
	assert.Equal(t, 2, record.Dispatches)
	assert.Equal(t, 1, record.Preemptions)
	assert.Equal(t, 7, record.Turnaround())

	record, err = simulator.Manager().Record(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, record.Response())
	assert.Equal(t, 4, record.FinishedAt)
}

func TestSimulator_Run(t *testing.T) {
	testCases := []struct {
		description     string
		config          func(config *procsim.Config)
		descriptors     []*arrival.Descriptor
		expectFinal     int
		expectIdle      int
		expectTimedOut  bool
		expectLive      int
		expectFirstRuns map[process.PID]int
	}{
		{
			description: "idle until first arrival",
			descriptors: []*arrival.Descriptor{{CreatedAt: 2, Priority: 1, ExecutionTime: 1, MemoryNeeded: 10}},
			expectFinal: 3,
			expectIdle:  2,
			expectFirstRuns: map[process.PID]int{0: 2},
		},
		{
			description: "full table defers arrivals",
			config:      func(config *procsim.Config) { config.Table.Capacity = 1 },
			descriptors: []*arrival.Descriptor{
				{CreatedAt: 0, Priority: 1, ExecutionTime: 2, MemoryNeeded: 10},
				{CreatedAt: 0, Priority: 1, ExecutionTime: 1, MemoryNeeded: 10},
			},
			expectFinal:     3,
			expectFirstRuns: map[process.PID]int{0: 0, 1: 2},
		},
		{
			description: "real-time first then by level",
			descriptors: []*arrival.Descriptor{
				{CreatedAt: 0, Priority: 4, ExecutionTime: 1, MemoryNeeded: 10},
				{CreatedAt: 0, Priority: 1, ExecutionTime: 2, MemoryNeeded: 10},
				{CreatedAt: 0, Priority: 0, ExecutionTime: 3, MemoryNeeded: 10},
			},
			expectFinal:     6,
			expectFirstRuns: map[process.PID]int{2: 0, 1: 3, 0: 5},
		},
		{
			description:    "time limit",
			config:         func(config *procsim.Config) { config.Simulation.MaxTime = 3 },
			descriptors:    []*arrival.Descriptor{{CreatedAt: 0, Priority: 1, ExecutionTime: 10, MemoryNeeded: 10}},
			expectFinal:    6,
			expectTimedOut: true,
			expectLive:     1,
		},
	}

	for _, testCase := range testCases {
		ctx := context.Background()
		config := procsim.DefaultConfig()
		if testCase.config != nil {
			testCase.config(config)
		}
		srv, err := procsim.New(procsim.WithConfig(config))
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		simulator, result, err := srv.Run(ctx, arrival.NewFeed(testCase.descriptors...))
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expectFinal, result.FinalTime, testCase.description)
		assert.Equal(t, testCase.expectIdle, result.Progress.IdleTicks, testCase.description)
		assert.Equal(t, testCase.expectTimedOut, result.TimedOut, testCase.description)
		assert.Equal(t, testCase.expectLive, simulator.Manager().Live(), testCase.description)
		assert.Equal(t, 0, result.Backlog, testCase.description)
		for pid, firstRun := range testCase.expectFirstRuns {
			record, err := simulator.Manager().Record(ctx, pid)
			if assert.NoError(t, err, testCase.description) {
				assert.Equal(t, firstRun, record.FirstRunAt, testCase.description)
			}
		}
	}
}

func TestSimulator_RunOnce(t *testing.T) {
	srv, err := procsim.New()
	assert.NoError(t, err)
	simulator := srv.NewSimulator()
	_, err = simulator.Run(context.Background(), arrival.NewFeed())
	assert.NoError(t, err)
	_, err = simulator.Run(context.Background(), arrival.NewFeed())
	assert.Error(t, err)
}
