// Package touchpad turns raw touch controller readings into calibrated
// screen coordinates for small embedded displays.
//
// # Pipeline
//
// Readings flow one way:
//
//	Sensor.Acquire → Filter.Read → Mapper.Map → Orient → Touchpad.Row/Col
//
// A Sensor performs one bus exchange per Acquire and reports bus errors as
// "not touched". Resistive controllers (xpt2046, tsc2007) are noisy and
// should be read through a Filter, which averages a burst of samples and
// rejects bursts whose variance is too high or during which the touch was
// lifted. Capacitive controllers (ft6206, cst816s, cst820) report stable
// coordinates and are read directly.
//
// The Mapper scales raw units to pixels with 18 bit fixed-point integers so
// it runs unchanged on microcontrollers without an FPU. Orient then applies
// the mounting of the panel: each axis may be reflected, and the axes may be
// swapped when the sensor X axis runs down the screen.
//
// # Controllers
//
//	Package  Type       Bus  Notes
//	xpt2046  resistive  SPI  optional discrete CS
//	tsc2007  resistive  I²C  0x48..0x4B
//	ft6206   capacitive I²C  FT6206/FT6236/FT6336, two touches
//	cst816s  capacitive I²C  needs the interrupt line
//	cst820   capacitive I²C  CYD ESP32-2432S024C
//
// I²C drivers accept a tinygo.org/x/drivers I2C, which both a periph.io
// i2c.Bus and a TinyGo machine.I2C satisfy.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"fmt"
//
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/touchpad"
//		"periph.io/x/devices/v3/touchpad/xpt2046"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//		p, _ := spireg.Open("")
//		s, _ := xpt2046.NewSPI(p, nil, nil)
//
//		cal, _ := touchpad.LoadCalibration("/etc/touch.json")
//		tp, _ := touchpad.New(s, nil, &touchpad.Opts{
//			Calibration: cal,
//			Filter:      &touchpad.DefaultFilterOpts,
//		})
//		for {
//			if tp.Poll() {
//				fmt.Println(tp.Row, tp.Col)
//			}
//		}
//	}
//
// Touchpad also implements touch.Pointer from tinygo.org/x/drivers/touch,
// and Watch delivers touch-down, move and release events on a channel.
//
// # Calibration
//
// A Calibration holds the raw range spanning the panel, the pixel counts
// along each sensor axis and the three mapping flags. The setup package
// derives all of them by having the operator touch four crosses;
// examples/touchpad_tool runs it on real hardware and saves the result with
// SaveCalibration. Zero pixel counts are filled in from the display given to
// New.
//
// # Sharing a Bus
//
// When the touch controller shares its SPI bus with the display, set
// FilterOpts.Bus to the lock guarding the bus so that a display refresh
// cannot split a filter burst.
//
// # Logging
//
// Diagnostics such as rejected noisy bursts (when FilterOpts.Verbose is set)
// and unexpected controller versions go through Logf, log.Printf by default.
// SetLogger(nil) mutes them.
package touchpad
