package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	var seen []Progress
	ctx, tracker := WithNewTracker(context.Background(), "run-1", func(p Progress) { seen = append(seen, p) })

	UpdateCtx(ctx, Delta{Created: 2, Ticks: 4, IdleTicks: 1})
	UpdateCtx(ctx, Delta{Dispatches: 1, Preemptions: 1, Ticks: 4})
	UpdateCtx(context.Background(), Delta{Created: 10})

	snapshot, ok := GetSnapshot(ctx)
	assert.True(t, ok)
	assert.Equal(t, "run-1", snapshot.RunID)
	assert.Equal(t, 2, snapshot.Created)
	assert.Equal(t, 8, snapshot.Ticks)
	assert.InDelta(t, 0.875, snapshot.Utilisation(), 0.0001)
	assert.Len(t, seen, 2)
	assert.Equal(t, 1, seen[1].Preemptions)
	assert.Equal(t, tracker.Snapshot().Dispatches, 1)

	var empty *Progress
	empty.Update(Delta{Created: 1})
	assert.Equal(t, Progress{}.Created, empty.Snapshot().Created)
	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
