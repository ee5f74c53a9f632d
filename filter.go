package touchpad

import (
	"errors"
	"sync"
)

// FilterOpts configures the noise-reduction preprocessor.
type FilterOpts struct {
	// Window is the number of samples averaged per reading.
	Window int
	// Discard is the number of leading samples thrown away. The first
	// sample after touch-down is usually transient.
	Discard int
	// MaxVariance is the largest population variance, in raw units
	// squared, accepted on either axis.
	MaxVariance int
	// Verbose logs rejected noisy windows through Logf.
	Verbose bool
	// Bus, if set, is held for the whole burst so that no other bus user
	// (such as a display sharing the SPI bus) interleaves with it.
	Bus sync.Locker
}

// DefaultFilterOpts suits 12-bit resistive controllers.
var DefaultFilterOpts = FilterOpts{Window: 10, Discard: 1, MaxVariance: 50}

// FilterStats counts the outcome of each Read.
type FilterStats struct {
	Accepted uint32 // stable touch reported
	Released uint32 // no touch, or released during the burst
	Noisy    uint32 // variance above MaxVariance
}

// Filter turns a burst of raw samples into one denoised reading. A reading
// either fully succeeds or fully fails; no state carries across calls
// apart from the statistics.
type Filter struct {
	s    Sensor
	opts FilterOpts
	xs   []int
	ys   []int
	st   FilterStats
}

// NewFilter returns a preprocessor reading from s. opts can be nil to use
// DefaultFilterOpts.
func NewFilter(s Sensor, opts *FilterOpts) (*Filter, error) {
	if s == nil {
		return nil, errors.New("touchpad: nil sensor")
	}
	if opts == nil {
		opts = &DefaultFilterOpts
	}
	if opts.Window < 1 {
		return nil, errors.New("touchpad: filter window must be at least 1")
	}
	if opts.Discard < 0 {
		return nil, errors.New("touchpad: filter discard count must not be negative")
	}
	if opts.MaxVariance < 0 {
		return nil, errors.New("touchpad: filter variance threshold must not be negative")
	}
	return &Filter{
		s:    s,
		opts: *opts,
		xs:   make([]int, opts.Window),
		ys:   make([]int, opts.Window),
	}, nil
}

// Read acquires Discard+Window samples and returns their mean. ok is false
// if the panel is not touched, was released mid-burst or the samples are
// too scattered.
func (f *Filter) Read() (x, y int, ok bool) {
	if f.opts.Bus != nil {
		f.opts.Bus.Lock()
		defer f.opts.Bus.Unlock()
	}
	for i := 0; i < f.opts.Discard; i++ {
		if !f.s.Acquire().Touched {
			f.st.Released++
			return 0, 0, false
		}
	}
	for i := range f.xs {
		smp := f.s.Acquire()
		if !smp.Touched {
			f.st.Released++
			return 0, 0, false
		}
		f.xs[i] = smp.X
		f.ys[i] = smp.Y
	}
	mx, vx := meanVariance(f.xs)
	my, vy := meanVariance(f.ys)
	if vx > f.opts.MaxVariance || vy > f.opts.MaxVariance {
		f.st.Noisy++
		if f.opts.Verbose {
			Logf("touchpad: noisy touch rejected: variance x=%d y=%d exceeds %d", vx, vy, f.opts.MaxVariance)
		}
		return 0, 0, false
	}
	f.st.Accepted++
	return mx, my, true
}

// Stats returns the counters accumulated since the filter was created.
func (f *Filter) Stats() FilterStats {
	return f.st
}

// meanVariance returns the integer mean and population variance of v.
func meanVariance(v []int) (mean, variance int) {
	sum := 0
	for _, n := range v {
		sum += n
	}
	mean = sum / len(v)
	sq := 0
	for _, n := range v {
		d := n - mean
		sq += d * d
	}
	return mean, sq / len(v)
}
