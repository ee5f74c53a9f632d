package sim

import (
	"image"
	"image/color"
)

// Gray4 is a 4-bit grayscale color (0-15 intensity levels). Only the lower
// 4 bits of Y are used.
type Gray4 struct {
	Y uint8
}

// RGBA implements color.Color.
func (c Gray4) RGBA() (r, g, b, a uint32) {
	// 0xF * 0x1111 = 0xFFFF
	y := uint32(c.Y&0x0F) * 0x1111
	return y, y, y, 0xFFFF
}

func toGray4(c color.Color) color.Color {
	if g, ok := c.(Gray4); ok {
		return g
	}
	r, g, b, _ := c.RGBA()
	// Luma from 16-bit channels, then keep the top nibble.
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Gray4{Y: uint8(y >> 12)}
}

// Gray4Model converts colors to Gray4.
var Gray4Model = color.ModelFunc(toGray4)

// Canvas is an in-memory monochrome-ish panel, packed two pixels per byte
// (high nibble is the left pixel), matching the frame buffer of small OLED
// controllers.
//
// It implements drivers.Displayer so that calibration targets and text can
// be drawn on it, and image.Image so that tests and the desktop simulator
// can inspect it.
type Canvas struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle

	// Frames counts Display calls.
	Frames int
}

// NewCanvas returns a blank canvas of w by h pixels. Rows of odd width end
// with an unused nibble.
func NewCanvas(w, h int) *Canvas {
	if w <= 0 || h <= 0 {
		return &Canvas{Rect: image.Rect(0, 0, 0, 0)}
	}
	stride := (w + 1) / 2
	return &Canvas{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   image.Rect(0, 0, w, h),
	}
}

// Size implements drivers.Displayer.
func (c *Canvas) Size() (x, y int16) {
	return int16(c.Rect.Dx()), int16(c.Rect.Dy())
}

// SetPixel implements drivers.Displayer.
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.Set(int(x), int(y), col)
}

// Display implements drivers.Displayer. The canvas has nothing to flush.
func (c *Canvas) Display() error {
	c.Frames++
	return nil
}

// Fill sets every pixel to g.
func (c *Canvas) Fill(g Gray4) {
	v := g.Y&0x0F<<4 | g.Y&0x0F
	for i := range c.Pix {
		c.Pix[i] = v
	}
}

// ColorModel implements image.Image.
func (c *Canvas) ColorModel() color.Model {
	return Gray4Model
}

// Bounds implements image.Image.
func (c *Canvas) Bounds() image.Rectangle {
	return c.Rect
}

// At implements image.Image.
func (c *Canvas) At(x, y int) color.Color {
	return c.Gray4At(x, y)
}

// Gray4At returns the pixel at (x, y), or black outside the canvas.
func (c *Canvas) Gray4At(x, y int) Gray4 {
	if !(image.Point{X: x, Y: y}.In(c.Rect)) {
		return Gray4{}
	}
	offset, shift := c.pixOffset(x, y)
	return Gray4{Y: (c.Pix[offset] >> shift) & 0x0F}
}

// Set implements draw.Image. Pixels outside the canvas are ignored.
func (c *Canvas) Set(x, y int, col color.Color) {
	c.SetGray4(x, y, Gray4Model.Convert(col).(Gray4))
}

// SetGray4 sets the pixel at (x, y) without color conversion.
func (c *Canvas) SetGray4(x, y int, g Gray4) {
	if !(image.Point{X: x, Y: y}.In(c.Rect)) {
		return
	}
	offset, shift := c.pixOffset(x, y)
	c.Pix[offset] = (c.Pix[offset] &^ (0x0F << shift)) | ((g.Y & 0x0F) << shift)
}

// Lit returns the number of pixels that are not black.
func (c *Canvas) Lit() int {
	n := 0
	for y := c.Rect.Min.Y; y < c.Rect.Max.Y; y++ {
		for x := c.Rect.Min.X; x < c.Rect.Max.X; x++ {
			if c.Gray4At(x, y).Y != 0 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) pixOffset(x, y int) (offset int, shift uint) {
	offset = (y-c.Rect.Min.Y)*c.Stride + (x-c.Rect.Min.X)/2
	shift = uint(4 * (1 - (x & 1)))
	return
}
