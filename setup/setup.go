// Package setup runs the interactive touch panel calibration.
//
// The operator touches four crosses in turn, clockwise from the top-left.
// From the raw readings the procedure works out which sensor axis runs
// along the screen rows, whether either axis is reflected, and the raw
// range covering the screen. The result is a touchpad.Calibration ready to
// be printed, saved with touchpad.SaveCalibration or passed to touchpad.New.
//
// The procedure is a state machine advanced by Step, so it can share a main
// loop with a GUI; Run drives it on a ticker instead.
package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/devices/v3/touchpad"
)

// State is the stage of the procedure.
type State int

// Procedure states.
const (
	WaitTouch   State = iota // waiting for a debounced touch on the current target
	WaitRelease              // tracking the touch until it is lifted
	Settle                   // pause before arming the next target
	Compute                  // all four points recorded
	Done                     // Result is valid
	Failed                   // Err tells why
)

func (s State) String() string {
	switch s {
	case WaitTouch:
		return "WaitTouch"
	case WaitRelease:
		return "WaitRelease"
	case Settle:
		return "Settle"
	case Compute:
		return "Compute"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Opts is the configuration for a Procedure.
type Opts struct {
	// Filter configures the preprocessor used to debounce touches.
	Filter touchpad.FilterOpts
	// Interval is the polling period of Run.
	Interval time.Duration
	// Settle is the pause after a release before the next target accepts a
	// touch.
	Settle time.Duration
	// SensorMax is the full scale of the sensor.
	SensorMax int
}

// DefaultOpts suits a 12-bit resistive panel.
var DefaultOpts = Opts{
	Filter:    touchpad.DefaultFilterOpts,
	Interval:  20 * time.Millisecond,
	Settle:    time.Second,
	SensorMax: 4095,
}

// Procedure is one calibration run.
type Procedure struct {
	f     *touchpad.Filter
	t     Targets
	opts  Opts
	w, h  int
	state State
	n     int
	pts   [4]Point
	since time.Time
	res   touchpad.Calibration
	err   error
}

// New returns a procedure reading s and prompting on t, and shows the first
// target. opts can be nil to use DefaultOpts.
func New(s touchpad.Sensor, t Targets, opts *Opts) (*Procedure, error) {
	if t == nil {
		return nil, errors.New("setup: nil targets")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Interval <= 0 {
		return nil, errors.New("setup: interval must be positive")
	}
	if opts.Settle < 0 {
		return nil, errors.New("setup: settle time must not be negative")
	}
	if opts.SensorMax <= 0 {
		return nil, errors.New("setup: sensor full scale must be positive")
	}
	f, err := touchpad.NewFilter(s, &opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("setup: invalid screen size %dx%d", w, h)
	}
	p := &Procedure{f: f, t: t, opts: *opts, w: int(w), h: int(h)}
	p.Reset()
	return p, nil
}

// Reset restarts the procedure from the first target.
func (p *Procedure) Reset() {
	p.state = WaitTouch
	p.n = 0
	p.pts = [4]Point{}
	p.res = touchpad.Calibration{}
	p.err = nil
	p.t.Clear()
	p.t.Message("Touch each cross.")
	p.show()
}

// State returns the current state.
func (p *Procedure) State() State {
	return p.state
}

// Target returns the index of the target being recorded.
func (p *Procedure) Target() int {
	return p.n
}

// Points returns the raw readings recorded so far.
func (p *Procedure) Points() [4]Point {
	return p.pts
}

// Result returns the calibration once the state is Done.
func (p *Procedure) Result() touchpad.Calibration {
	return p.res
}

// Err returns why the procedure failed.
func (p *Procedure) Err() error {
	return p.err
}

// Step polls the sensor once and advances the procedure. It blocks for at
// most one filter burst.
func (p *Procedure) Step() State {
	switch p.state {
	case WaitTouch:
		if x, y, ok := p.f.Read(); ok {
			p.pts[p.n] = Point{X: x, Y: y}
			p.state = WaitRelease
		}
	case WaitRelease:
		released := p.f.Stats().Released
		x, y, ok := p.f.Read()
		switch {
		case ok:
			p.pts[p.n] = Point{X: x, Y: y}
		case p.f.Stats().Released == released:
			// Noisy burst; the touch is still on.
		default:
			p.n++
			if p.n == len(p.pts) {
				p.state = Compute
				break
			}
			p.state = Settle
			p.since = time.Now()
			p.show()
		}
	case Settle:
		if time.Since(p.since) >= p.opts.Settle {
			p.state = WaitTouch
		}
	case Compute:
		p.compute()
	}
	return p.state
}

// Run steps the procedure every Interval until it ends or ctx is done. It
// returns the calibration, or the reason the procedure failed.
func (p *Procedure) Run(ctx context.Context) (touchpad.Calibration, error) {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()
	for {
		switch p.Step() {
		case Done:
			return p.res, nil
		case Failed:
			return touchpad.Calibration{}, p.err
		}
		select {
		case <-ctx.Done():
			return touchpad.Calibration{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Procedure) show() {
	row, col := Target(p.n, p.w, p.h)
	p.t.Show(p.n, row, col)
}

func (p *Procedure) compute() {
	c, err := Derive(p.pts, p.w, p.h, p.opts.SensorMax)
	if err != nil {
		p.state = Failed
		p.err = err
		p.t.Message(fmt.Sprintf("Calibration failed:\n%v", err))
		return
	}
	p.state = Done
	p.res = c
	p.t.Message(fmt.Sprintf("Calibration done.\n%s", c))
}
