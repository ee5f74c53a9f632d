package touchpad

// scale is the fixed-point shift used by Mapper. Raw values are clamped to
// the calibrated range before the multiply, so the product never exceeds
// pixels<<scale: 32 bits hold it for pixel counts below 8192.
const scale = 18

// Mapper converts raw sensor readings to pixel space using integer
// arithmetic only.
type Mapper struct {
	xMin, yMin int
	xMax, yMax int
	w, h       int
	xf, yf     int // pixels<<scale per raw unit
}

// NewMapper validates c and precomputes the scale factors.
func NewMapper(c Calibration) (*Mapper, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Mapper{
		xMin: c.XMin,
		yMin: c.YMin,
		xMax: c.XMax,
		yMax: c.YMax,
		w:    c.PixelWidth,
		h:    c.PixelHeight,
		xf:   (c.PixelWidth << scale) / (c.XMax - c.XMin),
		yf:   (c.PixelHeight << scale) / (c.YMax - c.YMin),
	}, nil
}

// Map returns the pixel-space position of raw reading (x, y). Readings
// outside the calibrated range clamp to the panel edge.
func (m *Mapper) Map(x, y int) (xp, yp int) {
	xp = clamp(((clamp(x, m.xMin, m.xMax)-m.xMin)*m.xf)>>scale, 0, m.w-1)
	yp = clamp(((clamp(y, m.yMin, m.yMax)-m.yMin)*m.yf)>>scale, 0, m.h-1)
	return xp, yp
}

// Orient maps pixel-space (xp, yp) to screen (row, col). Reflections are
// evaluated in the sensor frame, then the axes are swapped if c.Transpose.
// The result is not clamped: a reflected zero lands on PixelHeight or
// PixelWidth.
func Orient(xp, yp int, c Calibration) (row, col int) {
	if c.RowReflect {
		yp = c.PixelHeight - yp
	}
	if c.ColReflect {
		xp = c.PixelWidth - xp
	}
	if c.Transpose {
		return xp, yp
	}
	return yp, xp
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
