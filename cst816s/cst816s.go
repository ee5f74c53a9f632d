// Package cst816s reads the Hynitron CST816S capacitive touch controller via
// I²C.
//
// The chip only answers on the bus while a touch is in progress, which it
// signals with a pulse on its interrupt line. The driver therefore polls the
// interrupt pin and keeps the last state between pulses.
//
// More details:
// https://github.com/fbiego/CST816S
package cst816s

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/touchpad"
	"tinygo.org/x/drivers"
)

const (
	regGesture byte = 0x01 // gesture, fingers, XH, XL, YH, YL
	regVersion byte = 0xA7

	gestureRelease byte = 0x05
	eventUp        byte = 0x40
)

// Opts is the configuration for the CST816S.
type Opts struct {
	// Addr is the I²C address.
	Addr uint16
}

// DefaultOpts is used when New is given nil options.
var DefaultOpts = Opts{Addr: 0x15}

// Dev is a handle to a CST816S.
type Dev struct {
	bus     drivers.I2C
	irq     gpio.PinIn
	addr    uint16
	version [3]byte
	doID    bool
	last    touchpad.Sample
	buf     [6]byte
}

// New resets the controller and arms the interrupt pin. rst is optional.
func New(bus drivers.I2C, rst gpio.PinOut, irq gpio.PinIn, opts *Opts) (*Dev, error) {
	if irq == nil {
		return nil, errors.New("cst816s: interrupt pin is required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if rst != nil {
		if err := reset(rst); err != nil {
			return nil, fmt.Errorf("cst816s: failed to reset: %w", err)
		}
	}
	if err := irq.In(gpio.PullUp, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("cst816s: failed to configure interrupt: %w", err)
	}
	return &Dev{bus: bus, irq: irq, addr: opts.Addr, doID: true}, nil
}

func reset(rst gpio.PinOut) error {
	if err := rst.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(5 * time.Millisecond)
	if err := rst.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	return nil
}

// Acquire implements touchpad.Sensor.
//
// Without a pending interrupt the previous state is returned, as the chip
// only pulses the line when something changes.
func (d *Dev) Acquire() touchpad.Sample {
	if !d.irq.WaitForEdge(0) {
		return d.last
	}
	if d.doID {
		if err := d.bus.Tx(d.addr, []byte{regVersion}, d.version[:]); err == nil {
			d.doID = false
		}
	}
	if err := d.bus.Tx(d.addr, []byte{regGesture}, d.buf[:]); err != nil {
		d.last = touchpad.Sample{}
		return d.last
	}
	d.last = touchpad.Sample{
		X:       int(d.buf[2]&0x0F)<<8 | int(d.buf[3]),
		Y:       int(d.buf[4]&0x0F)<<8 | int(d.buf[5]),
		Touched: d.buf[0] != gestureRelease && d.buf[2]&eventUp == 0,
	}
	return d.last
}

// Version returns the firmware version bytes. They are zero until the first
// touch.
func (d *Dev) Version() [3]byte {
	return d.version
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("cst816s.Dev{%#x}", d.addr)
}

var _ touchpad.Sensor = (*Dev)(nil)
