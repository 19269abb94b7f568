package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/model/process"
)

func TestService_Drain(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return fixed }
	defer func() { clock.NowFunc = time.Now }()

	var received []*Event[process.PCB]
	srv := New(WithHandler(func(e *Event[process.PCB]) { received = append(received, e) }))
	ctx := context.Background()

	pcb := process.New(4, 2, 5, 10, process.Devices{}, 1)
	srv.Publish(ctx, Created, 1, pcb)
	pcb.State = process.Blocked(process.WaitingForMemory)
	srv.Publish(ctx, Blocked, 1, pcb)
	pcb.State = process.Ready()
	pcb.Priority = 1
	srv.Publish(ctx, Unblocked, 3, pcb)

	assert.Empty(t, received)
	delivered, err := srv.Drain(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, delivered)

	var types []Type
	for _, e := range received {
		types = append(types, e.Context.Type)
		assert.Equal(t, 4, e.Context.PID)
		assert.Equal(t, fixed, e.CreatedAt)
	}
	assert.Equal(t, []Type{Created, Blocked, Unblocked}, types)
	assert.Equal(t, "waiting_for_memory", received[1].Context.Reason)
	assert.Equal(t, 2, received[0].Data.Priority)
	assert.Equal(t, 1, received[2].Data.Priority)

	delivered, err = srv.Drain(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, delivered)
}

func TestService_Nil(t *testing.T) {
	var srv *Service
	srv.Publish(context.Background(), Created, 0, process.New(1, 1, 1, 1, process.Devices{}, 0))
	delivered, err := srv.Drain(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, delivered)
}
