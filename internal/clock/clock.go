package clock

import "time"

// NowFunc returns current wall time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Ticks is the simulated discrete clock. The zero value starts at tick 0.
type Ticks struct {
	now int
}

// Now returns the current tick.
func (t *Ticks) Now() int { return t.now }

// Advance moves the clock forward by n ticks and returns the new tick.
func (t *Ticks) Advance(n int) int {
	if n > 0 {
		t.now += n
	}
	return t.now
}

// Reset rewinds the clock to tick 0.
func (t *Ticks) Reset() { t.now = 0 }
