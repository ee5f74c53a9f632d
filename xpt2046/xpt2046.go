// Package xpt2046 reads the XPT2046 (ADS7843 compatible) resistive touch
// controller via SPI.
//
// Only the functions needed by the touchpad pipeline are implemented: the
// pressure, X and Y channels in 12-bit differential mode. Readings are noisy
// and should be fed through touchpad.Filter.
//
// Datasheet: https://www.buydisplay.com/download/ic/XPT2046.pdf
package xpt2046

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/touchpad"
)

// Channel selectors (A2..A0) in differential mode.
const (
	chanY  = 1
	chanZ1 = 3
	chanX  = 5
)

// Opts is the configuration for the XPT2046.
type Opts struct {
	// Speed is the SPI clock. The controller is rated for 2.5MHz.
	Speed physic.Frequency
	// Pressure is the Z1 reading above which the panel counts as touched.
	Pressure int
}

// DefaultOpts is used when NewSPI is given nil options.
var DefaultOpts = Opts{Speed: 2 * physic.MegaHertz, Pressure: 100}

// Dev is a handle to an XPT2046.
type Dev struct {
	c        conn.Conn
	cs       gpio.PinOut // nil when the SPI port drives CS
	pressure int
	w        [3]byte
	r        [3]byte
}

// NewSPI returns a device connected via SPI.
//
// cs is optional. When given, the SPI port is opened without chip select
// and cs is held low for the whole Z, X, Y exchange; otherwise the port
// asserts CS around each channel read.
func NewSPI(p spi.Port, cs gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Speed <= 0 || opts.Speed > 2500*physic.KiloHertz {
		return nil, errors.New("xpt2046: speed must be between 1Hz and 2.5MHz")
	}
	if opts.Pressure < 0 || opts.Pressure > 0xFFF {
		return nil, errors.New("xpt2046: pressure threshold must be between 0 and 4095")
	}
	mode := spi.Mode0
	if cs != nil {
		mode |= spi.NoCS
		if err := cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("xpt2046: failed to release CS: %w", err)
		}
	}
	c, err := p.Connect(opts.Speed, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("xpt2046: %w", err)
	}
	return &Dev{c: c, cs: cs, pressure: opts.Pressure}, nil
}

// Acquire implements touchpad.Sensor.
func (d *Dev) Acquire() touchpad.Sample {
	if d.cs != nil {
		if err := d.cs.Out(gpio.Low); err != nil {
			return touchpad.Sample{}
		}
		defer d.cs.Out(gpio.High)
	}
	z, err := d.value(chanZ1)
	if err != nil || z <= d.pressure {
		return touchpad.Sample{}
	}
	x, err := d.value(chanX)
	if err != nil {
		return touchpad.Sample{}
	}
	y, err := d.value(chanY)
	if err != nil {
		return touchpad.Sample{}
	}
	return touchpad.Sample{X: x, Y: y, Touched: true}
}

// errMalformed reports a reply whose null bit is set, as seen with a
// floating MISO line.
var errMalformed = errors.New("xpt2046: malformed reply")

// value converts one channel. The 12 bit result follows the null bit.
func (d *Dev) value(ch byte) (int, error) {
	// Start bit, 12 bit mode, differential, PD1=PD0=1 (always powered,
	// PENIRQ disabled).
	d.w = [3]byte{0x83 | ch<<4, 0, 0}
	if err := d.c.Tx(d.w[:], d.r[:]); err != nil {
		return 0, err
	}
	if d.r[1]&0x80 != 0 {
		return 0, errMalformed
	}
	v := int(d.r[0])<<16 | int(d.r[1])<<8 | int(d.r[2])
	return (v >> 3) & 0xFFF, nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("xpt2046.Dev{%s}", d.c)
}

var _ touchpad.Sensor = (*Dev)(nil)
