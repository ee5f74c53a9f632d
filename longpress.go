package touchpad

import (
	"sync"
	"time"
)

// LongPress calls a function when a touch is held for a given duration.
//
// Feed it the events of Watch (or of a polling loop) through Update. A
// release before the delay cancels the pending call; a call whose timer
// fired concurrently with the cancellation is dropped, so no callback runs
// after the release has been observed.
type LongPress struct {
	d  time.Duration
	fn func(row, col int)

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	down  bool
	row   int
	col   int
}

// NewLongPress returns a detector calling fn after d of continuous touch.
func NewLongPress(d time.Duration, fn func(row, col int)) *LongPress {
	return &LongPress{d: d, fn: fn}
}

// Update feeds the detector with the latest touch state.
func (l *LongPress) Update(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.row, l.col = ev.Row, ev.Col
	switch {
	case ev.Touched && !l.down:
		l.down = true
		l.arm()
	case !ev.Touched && l.down:
		l.down = false
		l.cancel()
	}
}

// Stop cancels any pending call.
func (l *LongPress) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.down = false
	l.cancel()
}

// arm must be called with mu held.
func (l *LongPress) arm() {
	l.cancel()
	gen := l.gen
	l.timer = time.AfterFunc(l.d, func() { l.fire(gen) })
}

// cancel must be called with mu held.
func (l *LongPress) cancel() {
	l.gen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *LongPress) fire(gen uint64) {
	l.mu.Lock()
	if gen != l.gen || !l.down {
		l.mu.Unlock()
		return
	}
	l.timer = nil
	row, col := l.row, l.col
	l.mu.Unlock()
	l.fn(row, col)
}
