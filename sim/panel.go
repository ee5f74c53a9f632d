// Package sim provides stand-ins for touch hardware: a simulated resistive
// panel and an in-memory canvas to draw on.
//
// They let the calibration procedure and the desktop simulator run without a
// board attached.
package sim

import (
	"fmt"
	"math/rand"
	"sync"

	"periph.io/x/devices/v3/touchpad"
)

// SensorMax is the full scale of the simulated 12-bit converter.
const SensorMax = touchpad.SensorMax

// PanelOpts configures a Panel.
type PanelOpts struct {
	// Noise is the amplitude of the uniform noise added to each axis.
	Noise int
	// Seed seeds the noise source so runs are reproducible.
	Seed int64
}

// Panel is a resistive touch panel wired with a known calibration. Touching
// a screen position makes Acquire return the raw reading that calibration
// would map back to it.
//
// Touch and Release may be called from another goroutine than Acquire.
type Panel struct {
	cal   touchpad.Calibration
	noise int

	mu      sync.Mutex
	rnd     *rand.Rand
	touched bool
	x, y    int
	reads   int
}

// NewPanel returns an untouched panel. cal describes how the panel is
// mounted; its pixel counts must be set.
func NewPanel(cal touchpad.Calibration, opts *PanelOpts) (*Panel, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &PanelOpts{}
	}
	if opts.Noise < 0 {
		return nil, fmt.Errorf("sim: noise must not be negative, got %d", opts.Noise)
	}
	return &Panel{cal: cal, noise: opts.Noise, rnd: rand.New(rand.NewSource(opts.Seed))}, nil
}

// Calibration returns the calibration the panel is wired with.
func (p *Panel) Calibration() touchpad.Calibration {
	return p.cal
}

// Touch presses the panel at the screen position (row, col).
func (p *Panel) Touch(row, col int) {
	x, y := Raw(p.cal, row, col)
	p.mu.Lock()
	p.touched = true
	p.x, p.y = x, y
	p.mu.Unlock()
}

// Release lifts the touch.
func (p *Panel) Release() {
	p.mu.Lock()
	p.touched = false
	p.mu.Unlock()
}

// Reads returns the number of Acquire calls so far.
func (p *Panel) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

// Acquire implements touchpad.Sensor.
func (p *Panel) Acquire() touchpad.Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	if !p.touched {
		return touchpad.Sample{}
	}
	return touchpad.Sample{X: p.jitter(p.x), Y: p.jitter(p.y), Touched: true}
}

func (p *Panel) jitter(v int) int {
	if p.noise > 0 {
		v += p.rnd.Intn(2*p.noise+1) - p.noise
	}
	return min(max(v, 0), SensorMax)
}

// Raw returns the raw reading that cal maps to the pixel centre of (row,
// col). It is the inverse of touchpad.Mapper followed by touchpad.Orient.
func Raw(cal touchpad.Calibration, row, col int) (x, y int) {
	xp, yp := col, row
	if cal.Transpose {
		xp, yp = row, col
	}
	if cal.ColReflect {
		xp = cal.PixelWidth - xp
	}
	if cal.RowReflect {
		yp = cal.PixelHeight - yp
	}
	xp = min(max(xp, 0), cal.PixelWidth-1)
	yp = min(max(yp, 0), cal.PixelHeight-1)
	x = cal.XMin + (2*xp+1)*(cal.XMax-cal.XMin)/(2*cal.PixelWidth)
	y = cal.YMin + (2*yp+1)*(cal.YMax-cal.YMin)/(2*cal.PixelHeight)
	return x, y
}

// String returns a string representation of the panel.
func (p *Panel) String() string {
	return fmt.Sprintf("sim.Panel{%dx%d, noise=%d}", p.cal.PixelWidth, p.cal.PixelHeight, p.noise)
}

var _ touchpad.Sensor = (*Panel)(nil)
