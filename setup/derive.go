package setup

import (
	"errors"
	"fmt"

	"periph.io/x/devices/v3/touchpad"
)

// ErrNarrowRange is returned when the touched points span too little of the
// sensor range to be trusted, usually because the same spot was touched
// twice or the panel is not wired.
var ErrNarrowRange = errors.New("setup: raw range too narrow")

// Point is a raw sensor reading recorded at a calibration target.
type Point struct {
	X, Y int
}

// Target returns the screen position of calibration target n (0 to 3):
// clockwise from the top-left, each 1/8 of the screen in from both edges.
func Target(n, width, height int) (row, col int) {
	dh, dw := height/8, width/8
	switch n {
	case 0:
		return dh, dw
	case 1:
		return dh, width - dw
	case 2:
		return height - dh, width - dw
	default:
		return height - dh, dw
	}
}

// Derive computes the calibration from the raw readings at the four targets
// of a width by height screen. The readings are extrapolated from the
// targets to the screen edges and clamped to [0, sensorMax].
func Derive(pts [4]Point, width, height, sensorMax int) (touchpad.Calibration, error) {
	if width <= 0 || height <= 0 {
		return touchpad.Calibration{}, fmt.Errorf("%w: screen %dx%d", touchpad.ErrInvalidCalibration, width, height)
	}
	xlo, xhi := pts[0].X, pts[0].X
	ylo, yhi := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		xlo, xhi = min(xlo, p.X), max(xhi, p.X)
		ylo, yhi = min(ylo, p.Y), max(yhi, p.Y)
	}
	if xhi-xlo < sensorMax/8 || yhi-ylo < sensorMax/8 {
		return touchpad.Calibration{}, fmt.Errorf("%w: x %d..%d, y %d..%d", ErrNarrowRange, xlo, xhi, ylo, yhi)
	}
	// The targets sit 1/8 in from the edges, so they cover 3/4 of the
	// screen; extend by a sixth of their spread on each side.
	dx, dy := (xhi-xlo)/6, (yhi-ylo)/6
	c := touchpad.Calibration{
		XMin: max(xlo-dx, 0),
		XMax: min(xhi+dx, sensorMax),
		YMin: max(ylo-dy, 0),
		YMax: min(yhi+dy, sensorMax),
	}
	// Targets 0 and 1 share a screen row.
	c.Transpose = abs(pts[0].Y-pts[1].Y) > abs(pts[0].X-pts[1].X)
	if c.Transpose {
		c.PixelWidth, c.PixelHeight = height, width
		c.ColReflect = pts[0].X > pts[3].X
		c.RowReflect = pts[0].Y > pts[1].Y
	} else {
		c.PixelWidth, c.PixelHeight = width, height
		c.ColReflect = pts[0].X > pts[1].X
		c.RowReflect = pts[0].Y > pts[3].Y
	}
	return c, c.Validate()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
