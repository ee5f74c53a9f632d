package sim

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/touchpad"
	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Canvas)(nil)

func TestGray4RGBA(t *testing.T) {
	tests := []struct {
		name string
		gray Gray4
		want uint32
	}{
		{"black", Gray4{Y: 0}, 0x0000},
		{"mid gray", Gray4{Y: 8}, 0x8888},
		{"white", Gray4{Y: 15}, 0xFFFF},
		{"mask ignored", Gray4{Y: 0x5F}, 0xFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.gray.RGBA()
			if r != tt.want || g != tt.want || b != tt.want || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want %x", r, g, b, a, tt.want)
			}
		})
	}
}

func TestGray4ModelConvert(t *testing.T) {
	tests := []struct {
		in   color.Color
		want uint8
	}{
		{Gray4{Y: 7}, 7},
		{color.Black, 0},
		{color.White, 15},
		{color.RGBA{0x88, 0x88, 0x88, 0xFF}, 8},
	}
	for _, tt := range tests {
		if got := Gray4Model.Convert(tt.in).(Gray4); got.Y != tt.want {
			t.Errorf("Convert(%v) = %d, want %d", tt.in, got.Y, tt.want)
		}
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(240, 320)
	w, h := c.Size()
	assert.Equal(t, int16(240), w)
	assert.Equal(t, int16(320), h)
	assert.Len(t, c.Pix, 120*320)

	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	c.SetPixel(0, 0, white)
	c.SetPixel(1, 0, color.RGBA{0x88, 0x88, 0x88, 0xFF})
	c.SetPixel(239, 319, white)
	c.SetPixel(-1, 5, white)
	c.SetPixel(240, 5, white)
	c.SetPixel(5, 320, white)
	assert.Equal(t, byte(0xF8), c.Pix[0])
	assert.Equal(t, Gray4{Y: 15}, c.Gray4At(239, 319))
	assert.Equal(t, Gray4{}, c.Gray4At(240, 319))
	assert.Equal(t, 3, c.Lit())

	require.NoError(t, c.Display())
	assert.Equal(t, 1, c.Frames)

	c.Fill(Gray4{Y: 3})
	assert.Equal(t, 240*320, c.Lit())
	assert.Equal(t, Gray4{Y: 3}, c.At(17, 33))
	c.Fill(Gray4{})
	assert.Zero(t, c.Lit())
}

func TestNewCanvasOddWidth(t *testing.T) {
	c := NewCanvas(241, 320)
	w, h := c.Size()
	assert.Equal(t, int16(241), w)
	assert.Equal(t, int16(320), h)
	assert.Equal(t, 121, c.Stride)
	assert.Len(t, c.Pix, 121*320)

	c.SetGray4(240, 0, Gray4{Y: 15})
	c.SetGray4(0, 1, Gray4{Y: 9})
	assert.Equal(t, byte(0xF0), c.Pix[120], "last pixel in the high nibble")
	assert.Equal(t, byte(0x90), c.Pix[121], "next row starts on a fresh byte")
	assert.Equal(t, Gray4{Y: 15}, c.Gray4At(240, 0))
	assert.Equal(t, Gray4{}, c.Gray4At(241, 0))
	assert.Equal(t, 2, c.Lit())

	c.Fill(Gray4{Y: 1})
	assert.Equal(t, 241*320, c.Lit(), "padding nibbles are not pixels")

	assert.True(t, NewCanvas(0, 10).Bounds().Empty())
}

func orientations(w, h int) []touchpad.Calibration {
	var out []touchpad.Calibration
	for i := 0; i < 8; i++ {
		c := touchpad.Calibration{
			XMin: 250, YMin: 180, XMax: 3850, YMax: 3900,
			PixelWidth: w, PixelHeight: h,
			Transpose: i&1 != 0, RowReflect: i&2 != 0, ColReflect: i&4 != 0,
		}
		if c.Transpose {
			c.PixelWidth, c.PixelHeight = h, w
		}
		out = append(out, c)
	}
	return out
}

func TestPanelRoundTrip(t *testing.T) {
	for _, cal := range orientations(240, 320) {
		t.Run(fmt.Sprintf("t=%t rr=%t rc=%t", cal.Transpose, cal.RowReflect, cal.ColReflect), func(t *testing.T) {
			p, err := NewPanel(cal, nil)
			require.NoError(t, err)
			tp, err := touchpad.New(p, nil, &touchpad.Opts{Calibration: cal})
			require.NoError(t, err)
			for _, pos := range [][2]int{{1, 1}, {40, 30}, {160, 120}, {319, 239}, {280, 210}} {
				p.Touch(pos[0], pos[1])
				require.True(t, tp.Poll())
				assert.Equal(t, pos[0], tp.Row, "row at %v", pos)
				assert.Equal(t, pos[1], tp.Col, "col at %v", pos)
			}
			p.Release()
			assert.False(t, tp.Poll())
		})
	}
}

func TestPanelNoise(t *testing.T) {
	cal := touchpad.Calibration{XMin: 0, YMin: 0, XMax: SensorMax, YMax: SensorMax, PixelWidth: 240, PixelHeight: 320}
	p, err := NewPanel(cal, &PanelOpts{Noise: 5, Seed: 42})
	require.NoError(t, err)
	x, y := Raw(cal, 160, 120)
	p.Touch(160, 120)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		s := p.Acquire()
		require.True(t, s.Touched)
		require.InDelta(t, x, s.X, 5)
		require.InDelta(t, y, s.Y, 5)
		seen[s.X] = true
	}
	assert.Greater(t, len(seen), 5)
	assert.Equal(t, 500, p.Reads())

	// Noise at the edge stays inside the converter range.
	p.Touch(0, 0)
	for i := 0; i < 100; i++ {
		s := p.Acquire()
		require.GreaterOrEqual(t, s.X, 0)
		require.GreaterOrEqual(t, s.Y, 0)
	}
}

func TestNewPanelInvalid(t *testing.T) {
	_, err := NewPanel(touchpad.Calibration{XMax: 4095, YMax: 4095}, nil)
	assert.ErrorIs(t, err, touchpad.ErrInvalidCalibration)
	_, err = NewPanel(touchpad.Calibration{XMax: 4095, YMax: 4095, PixelWidth: 1, PixelHeight: 1}, &PanelOpts{Noise: -1})
	assert.Error(t, err)
}
