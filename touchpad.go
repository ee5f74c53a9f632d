package touchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers/touch"
)

// Sample is one instantaneous reading in raw sensor units.
type Sample struct {
	X, Y    int
	Touched bool
}

// Sensor is implemented by each touch controller driver.
//
// Acquire performs a single bus exchange without retries. Bus errors and
// malformed replies are reported as not touched.
type Sensor interface {
	Acquire() Sample
}

// Display is the part of the display driver the touchpad depends on. It is
// satisfied by drivers.Displayer.
type Display interface {
	Size() (x, y int16)
}

// Opts is the configuration for a Touchpad.
type Opts struct {
	// Calibration maps raw readings to screen pixels. Zero pixel counts are
	// taken from the display.
	Calibration Calibration
	// Filter enables the noise-reduction preprocessor. Leave nil for
	// capacitive controllers, which report stable coordinates.
	Filter *FilterOpts
}

// Event is a touch state change reported by Watch.
type Event struct {
	Row, Col int
	Touched  bool
}

// Touchpad is the calibrated touch device consumed by the GUI.
type Touchpad struct {
	// Screen referenced coordinates of the last successful Poll.
	Row, Col int
	// Raw filtered reading of the last successful Poll.
	X, Y int

	s    Sensor
	f    *Filter
	m    *Mapper
	cal  Calibration
	rows int
	cols int
}

// New returns a Touchpad reading from s. d may be nil when the calibration
// specifies the pixel counts. opts can be nil to use DefaultCalibration
// without filtering.
func New(s Sensor, d Display, opts *Opts) (*Touchpad, error) {
	if s == nil {
		return nil, errors.New("touchpad: nil sensor")
	}
	if opts == nil {
		opts = &Opts{Calibration: DefaultCalibration}
	}
	cal := opts.Calibration
	if cal.PixelWidth == 0 || cal.PixelHeight == 0 {
		if d == nil {
			return nil, fmt.Errorf("%w: pixel size unset and no display", ErrInvalidCalibration)
		}
		w, h := d.Size()
		if cal.Transpose {
			w, h = h, w
		}
		if cal.PixelWidth == 0 {
			cal.PixelWidth = int(w)
		}
		if cal.PixelHeight == 0 {
			cal.PixelHeight = int(h)
		}
	}
	m, err := NewMapper(cal)
	if err != nil {
		return nil, err
	}
	t := &Touchpad{s: s, m: m, cal: cal}
	t.rows, t.cols = cal.Screen()
	if opts.Filter != nil {
		if t.f, err = NewFilter(s, opts.Filter); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Calibration returns the calibration in use, with pixel counts resolved.
func (t *Touchpad) Calibration() Calibration {
	return t.cal
}

// Filter returns the preprocessor, or nil when filtering is disabled.
func (t *Touchpad) Filter() *Filter {
	return t.f
}

// Poll reads the sensor. It returns true if the panel is touched, in which
// case Row and Col hold the screen coordinates.
func (t *Touchpad) Poll() bool {
	var x, y int
	if t.f != nil {
		var ok bool
		if x, y, ok = t.f.Read(); !ok {
			return false
		}
	} else {
		smp := t.s.Acquire()
		if !smp.Touched {
			return false
		}
		x, y = smp.X, smp.Y
	}
	xp, yp := t.m.Map(x, y)
	row, col := Orient(xp, yp, t.cal)
	t.X, t.Y = x, y
	t.Row = clamp(row, 0, t.rows-1)
	t.Col = clamp(col, 0, t.cols-1)
	return true
}

// ReadTouchPoint implements touch.Pointer. X is the column and Y the row;
// Z is 1 while touched.
func (t *Touchpad) ReadTouchPoint() touch.Point {
	if !t.Poll() {
		return touch.Point{}
	}
	return touch.Point{X: t.Col, Y: t.Row, Z: 1}
}

// Watch polls every interval until ctx is done and reports touch-down,
// movement and release. Moves the consumer has not received yet are merged
// into the latest one; touch-down and release events are always delivered
// in order. The channel is closed on return.
//
// Watch owns the Touchpad while ctx is live: Poll, ReadTouchPoint and the
// Row, Col, X and Y fields must not be used concurrently.
func (t *Touchpad) Watch(ctx context.Context, interval time.Duration) (<-chan Event, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("touchpad: watch interval %s must be positive", interval)
	}
	ch := make(chan Event)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var last Event
		var q eventQueue
		for {
			var out chan<- Event
			var next Event
			if len(q.evs) != 0 {
				out, next = ch, q.evs[0]
			}
			select {
			case <-ctx.Done():
				return
			case out <- next:
				q.pop()
				continue
			case <-ticker.C:
			}
			ev := Event{Touched: t.Poll()}
			if ev.Touched {
				ev.Row, ev.Col = t.Row, t.Col
			} else {
				ev.Row, ev.Col = last.Row, last.Col
			}
			if ev == last {
				continue
			}
			q.push(ev, ev.Touched && last.Touched)
			last = ev
		}
	}()
	return ch, nil
}

// eventQueue holds the events Watch has not delivered yet.
type eventQueue struct {
	evs []Event
	// moveTail is set when the newest queued event is a move.
	moveTail bool
}

func (q *eventQueue) push(ev Event, move bool) {
	if move && q.moveTail {
		q.evs[len(q.evs)-1] = ev
		return
	}
	q.evs = append(q.evs, ev)
	q.moveTail = move
}

func (q *eventQueue) pop() {
	q.evs = q.evs[1:]
	if len(q.evs) == 0 {
		q.evs = nil
		q.moveTail = false
	}
}

var _ touch.Pointer = (*Touchpad)(nil)
