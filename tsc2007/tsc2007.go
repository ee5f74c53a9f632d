// Package tsc2007 reads the TSC2007 resistive touch controller via I²C.
//
// The driver is minimal: it reads pressure, X and Y in 12-bit mode and
// powers the converter down between readings. It is known to work with the
// Adafruit TSC2007 breakout (product 5423).
//
// Datasheet: https://www.ti.com/lit/ds/symlink/tsc2007.pdf
package tsc2007

import (
	"errors"
	"fmt"

	"periph.io/x/devices/v3/touchpad"
	"tinygo.org/x/drivers"
)

// Command bytes: converter function in the high nibble, power-down mode in
// bits 3..2 (01: ADC on, PENIRQ disabled).
const (
	cmdPowerDown byte = 0x00
	cmdMeasureX  byte = 0xC4
	cmdMeasureY  byte = 0xD4
	cmdMeasureZ1 byte = 0xE4
)

// Opts is the configuration for the TSC2007.
type Opts struct {
	// Addr is the I²C address, 0x48 to 0x4B depending on A0/A1.
	Addr uint16
	// Pressure is the Z1 reading above which the panel counts as touched.
	Pressure int
}

// DefaultOpts is used when New is given nil options.
var DefaultOpts = Opts{Addr: 0x48, Pressure: 100}

// Dev is a handle to a TSC2007.
type Dev struct {
	bus      drivers.I2C
	addr     uint16
	pressure int
	w        [1]byte
	r        [2]byte
}

// New returns a device on bus. bus can be a periph.io i2c.Bus or a TinyGo
// machine.I2C.
func New(bus drivers.I2C, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Addr < 0x48 || opts.Addr > 0x4B {
		return nil, errors.New("tsc2007: address must be between 0x48 and 0x4B")
	}
	if opts.Pressure < 0 || opts.Pressure > 0xFFF {
		return nil, errors.New("tsc2007: pressure threshold must be between 0 and 4095")
	}
	d := &Dev{bus: bus, addr: opts.Addr, pressure: opts.Pressure}
	if err := d.command(cmdPowerDown); err != nil {
		return nil, fmt.Errorf("tsc2007: failed to power down: %w", err)
	}
	return d, nil
}

// Acquire implements touchpad.Sensor.
func (d *Dev) Acquire() touchpad.Sample {
	defer d.command(cmdPowerDown)
	z, err := d.measure(cmdMeasureZ1)
	if err != nil || z <= d.pressure {
		return touchpad.Sample{}
	}
	x, err := d.measure(cmdMeasureX)
	if err != nil {
		return touchpad.Sample{}
	}
	y, err := d.measure(cmdMeasureY)
	if err != nil {
		return touchpad.Sample{}
	}
	return touchpad.Sample{X: x, Y: y, Touched: true}
}

func (d *Dev) command(cmd byte) error {
	d.w[0] = cmd
	return d.bus.Tx(d.addr, d.w[:], nil)
}

// measure starts a conversion and reads back the 12 bit result.
func (d *Dev) measure(cmd byte) (int, error) {
	if err := d.command(cmd); err != nil {
		return 0, err
	}
	if err := d.bus.Tx(d.addr, nil, d.r[:]); err != nil {
		return 0, err
	}
	return int(d.r[0])<<4 | int(d.r[1])>>4, nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("tsc2007.Dev{%#x}", d.addr)
}

var _ touchpad.Sensor = (*Dev)(nil)
