package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/dao"
)

func newRecordStore() *MemoryStore[process.PID, process.Record] {
	return NewMemoryStore[process.PID, process.Record](
		func(r *process.Record) process.PID { return r.PID },
		WithOrder[process.PID, process.Record](func(a, b *process.Record) bool { return a.PID < b.PID }),
		WithFilter[process.PID, process.Record](func(r *process.Record, p *dao.Parameter) bool {
			if p.Name == "realTime" {
				return r.IsRealTime() == p.Value.(bool)
			}
			return true
		}),
	)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	srv := newRecordStore()
	for _, record := range []*process.Record{
		{PID: 3, StartingPriority: 2},
		{PID: 1, StartingPriority: 0},
		{PID: 2, StartingPriority: 4},
	} {
		assert.NoError(t, srv.Save(ctx, record))
	}
	assert.True(t, errors.Is(srv.Save(ctx, nil), dao.ErrNilEntity))

	loaded, err := srv.Load(ctx, 2)
	assert.NoError(t, err)
	assert.Equal(t, 4, loaded.StartingPriority)

	_, err = srv.Load(ctx, 9)
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	all, err := srv.List(ctx)
	assert.NoError(t, err)
	var pids []process.PID
	for _, record := range all {
		pids = append(pids, record.PID)
	}
	assert.Equal(t, []process.PID{1, 2, 3}, pids)

	realTime, err := srv.List(ctx, dao.NewParameter("realTime", true))
	assert.NoError(t, err)
	assert.Len(t, realTime, 1)
	assert.Equal(t, process.PID(1), realTime[0].PID)

	assert.NoError(t, srv.Delete(ctx, 1))
	all, _ = srv.List(ctx)
	assert.Len(t, all, 2)
}
