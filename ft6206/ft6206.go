// Package ft6206 reads the FocalTech FT6206/FT6236/FT6336 capacitive touch
// controllers via I²C.
//
// The controller tracks up to two touches. The driver reports the second
// one unless it has been lifted, in which case it falls back to the first.
//
// Datasheet: https://cdn-shop.adafruit.com/datasheets/FT6x06+Datasheet_V0.1_Preliminary_20120723.pdf
package ft6206

import (
	"errors"
	"fmt"

	"periph.io/x/devices/v3/touchpad"
	"tinygo.org/x/drivers"
)

const (
	regTouchData byte = 0x02 // TD_STATUS followed by two 6 byte touch records
	regThreshold byte = 0x80
	regChipID    byte = 0xA3
	regVendorID  byte = 0xA8
	vendorID     byte = 0x11

	// eventUp is set in the event flag bits (7..6) of the XH register when
	// the touch has been lifted.
	eventUp byte = 0x40
)

// ErrChipID is returned by New when the vendor or chip identifier does not
// match a supported controller.
var ErrChipID = errors.New("ft6206: unsupported chip")

// Opts is the configuration for the FT6206.
type Opts struct {
	// Addr is the I²C address.
	Addr uint16
	// Threshold is the touch detection sensitivity; lower is more sensitive.
	Threshold byte
}

// DefaultOpts is used when New is given nil options.
var DefaultOpts = Opts{Addr: 0x38, Threshold: 128}

// Dev is a handle to an FT6206 family controller.
type Dev struct {
	bus  drivers.I2C
	addr uint16
	chip byte
	buf  [11]byte
}

// New returns a device on bus after checking the controller identity and
// setting the touch threshold.
func New(bus drivers.I2C, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{bus: bus, addr: opts.Addr}
	v, err := d.readReg(regVendorID)
	if err != nil {
		return nil, fmt.Errorf("ft6206: failed to read vendor: %w", err)
	}
	if v != vendorID {
		return nil, fmt.Errorf("%w: vendor %#02x", ErrChipID, v)
	}
	if d.chip, err = d.readReg(regChipID); err != nil {
		return nil, fmt.Errorf("ft6206: failed to read chip id: %w", err)
	}
	switch d.chip {
	case 0x06, 0x36, 0x64:
	default:
		return nil, fmt.Errorf("%w: chip %#02x", ErrChipID, d.chip)
	}
	if err := bus.Tx(d.addr, []byte{regThreshold, opts.Threshold}, nil); err != nil {
		return nil, fmt.Errorf("ft6206: failed to set threshold: %w", err)
	}
	return d, nil
}

// Acquire implements touchpad.Sensor.
func (d *Dev) Acquire() touchpad.Sample {
	if err := d.bus.Tx(d.addr, []byte{regTouchData}, d.buf[:]); err != nil {
		return touchpad.Sample{}
	}
	// buf[0] is the touch count, then XH, XL, YH, YL, weight, misc per touch.
	switch n := d.buf[0] & 0x0F; {
	case n == 0 || n > 2:
		return touchpad.Sample{}
	case n == 2 && d.buf[7]&eventUp == 0:
		return point(d.buf[7:11])
	case d.buf[1]&eventUp != 0:
		return touchpad.Sample{}
	default:
		return point(d.buf[1:5])
	}
}

// Chip returns the chip identifier read at initialization.
func (d *Dev) Chip() byte {
	return d.chip
}

func (d *Dev) readReg(reg byte) (byte, error) {
	var b [1]byte
	err := d.bus.Tx(d.addr, []byte{reg}, b[:])
	return b[0], err
}

func point(b []byte) touchpad.Sample {
	return touchpad.Sample{
		X:       int(b[0]&0x0F)<<8 | int(b[1]),
		Y:       int(b[2]&0x0F)<<8 | int(b[3]),
		Touched: true,
	}
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ft6206.Dev{%#x, chip=%#02x}", d.addr, d.chip)
}

var _ touchpad.Sensor = (*Dev)(nil)
