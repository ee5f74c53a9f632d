// Package cst820 reads the Hynitron CST820 capacitive touch controller via
// I²C, as fitted to the ESP32-2432S024C board.
package cst820

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/touchpad"
	"tinygo.org/x/drivers"
)

const (
	regGesture byte = 0x01
	regVersion byte = 0xA7

	// Version is the firmware version the driver was written against.
	Version byte = 0xB7
)

// Opts is the configuration for the CST820.
type Opts struct {
	// Addr is the I²C address.
	Addr uint16
}

// DefaultOpts is used when New is given nil options.
var DefaultOpts = Opts{Addr: 0x15}

// Dev is a handle to a CST820.
type Dev struct {
	bus     drivers.I2C
	addr    uint16
	version byte
	buf     [6]byte
}

// New resets the controller and reads its version. rst is optional. An
// unexpected version is logged through touchpad.Logf but is not an error.
func New(bus drivers.I2C, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if rst != nil {
		if err := rst.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("cst820: failed to reset: %w", err)
		}
		time.Sleep(5 * time.Millisecond)
		if err := rst.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("cst820: failed to reset: %w", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	d := &Dev{bus: bus, addr: opts.Addr}
	var b [1]byte
	if err := bus.Tx(d.addr, []byte{regVersion}, b[:]); err != nil {
		return nil, fmt.Errorf("cst820: failed to read version: %w", err)
	}
	d.version = b[0]
	if d.version != Version {
		touchpad.Logf("cst820: unexpected chip version %#02x", d.version)
	}
	return d, nil
}

// Acquire implements touchpad.Sensor.
func (d *Dev) Acquire() touchpad.Sample {
	if err := d.bus.Tx(d.addr, []byte{regGesture}, d.buf[:]); err != nil {
		return touchpad.Sample{}
	}
	if d.buf[1] != 1 {
		return touchpad.Sample{}
	}
	return touchpad.Sample{
		X:       int(d.buf[2]&0x0F)<<8 | int(d.buf[3]),
		Y:       int(d.buf[4]&0x0F)<<8 | int(d.buf[5]),
		Touched: true,
	}
}

// Version returns the firmware version read at initialization.
func (d *Dev) Version() byte {
	return d.version
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("cst820.Dev{%#x}", d.addr)
}

var _ touchpad.Sensor = (*Dev)(nil)
