// Package progress keeps aggregated counters for a single simulation run. The
// tracker lives in the run context; every component that receives the
// context can update the counters via Delta without a global registry.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/procsim/internal/clock"
)

// Delta represents an incremental counter change. Fields are signed.
type Delta struct {
	Created     int
	Rejected    int
	Blocked     int
	Terminated  int
	Dispatches  int
	Preemptions int
	IdleTicks   int
	Ticks       int
}

// Progress keeps aggregated run counters. It is safe for concurrent use.
type Progress struct {
	RunID     string
	StartedAt time.Time

	Created     int
	Rejected    int
	Blocked     int
	Terminated  int
	Dispatches  int
	Preemptions int
	IdleTicks   int
	Ticks       int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the delta. The onChange callback, if any, receives a copy
// outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.Lock()
	p.Created += d.Created
	p.Rejected += d.Rejected
	p.Blocked += d.Blocked
	p.Terminated += d.Terminated
	p.Dispatches += d.Dispatches
	p.Preemptions += d.Preemptions
	p.IdleTicks += d.IdleTicks
	p.Ticks += d.Ticks
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

func (p *Progress) copy() Progress {
	return Progress{
		RunID:       p.RunID,
		StartedAt:   p.StartedAt,
		Created:     p.Created,
		Rejected:    p.Rejected,
		Blocked:     p.Blocked,
		Terminated:  p.Terminated,
		Dispatches:  p.Dispatches,
		Preemptions: p.Preemptions,
		IdleTicks:   p.IdleTicks,
		Ticks:       p.Ticks,
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update. Nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

// Utilisation returns the share of ticks the CPU was busy.
func (p *Progress) Utilisation() float64 {
	if p.Ticks == 0 {
		return 0
	}
	return float64(p.Ticks-p.IdleTicks) / float64(p.Ticks)
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker embeds a new tracker in a derived context.
func WithNewTracker(ctx context.Context, runID string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		RunID:     runID,
		StartedAt: clock.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// GetSnapshot combines FromContext and Snapshot.
func GetSnapshot(ctx context.Context) (Progress, bool) {
	if tr, ok := FromContext(ctx); ok {
		return tr.Snapshot(), true
	}
	return Progress{}, false
}

// UpdateCtx applies the delta to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
