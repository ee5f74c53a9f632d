package setup

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"periph.io/x/devices/v3/touchpad"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Targets shows the operator where to touch.
type Targets interface {
	// Size returns the screen size in pixels.
	Size() (x, y int16)
	// Show marks target n at the screen position (row, col).
	Show(n, row, col int)
	// Clear erases the screen.
	Clear()
	// Message displays a prompt or a result.
	Message(s string)
}

const (
	crossLen   = 10
	lineHeight = 7
)

// DisplayTargets draws crosses and prompts on a display.
type DisplayTargets struct {
	d    drivers.Displayer
	font tinyfont.Fonter
	// Foreground and background colors.
	FG, BG color.RGBA
}

// NewDisplayTargets returns targets drawn in white on black with the
// Picopixel font.
func NewDisplayTargets(d drivers.Displayer) *DisplayTargets {
	return &DisplayTargets{
		d:    d,
		font: &tinyfont.Picopixel,
		FG:   color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		BG:   color.RGBA{A: 0xFF},
	}
}

// Size implements Targets.
func (t *DisplayTargets) Size() (x, y int16) {
	return t.d.Size()
}

// Show implements Targets.
func (t *DisplayTargets) Show(n, row, col int) {
	x, y := int16(col), int16(row)
	for i := int16(-crossLen / 2); i < crossLen/2; i++ {
		t.d.SetPixel(x+i, y, t.FG)
		t.d.SetPixel(x, y+i, t.FG)
	}
	t.flush()
}

// Clear implements Targets.
func (t *DisplayTargets) Clear() {
	w, h := t.d.Size()
	t.fill(0, 0, w, h)
	t.flush()
}

// Message implements Targets. Lines are separated by '\n'; the area they
// cover at the top of the screen is erased first.
func (t *DisplayTargets) Message(s string) {
	lines := strings.Split(s, "\n")
	w, _ := t.d.Size()
	t.fill(0, 0, w, int16(len(lines)*lineHeight+2))
	for i, l := range lines {
		tinyfont.WriteLine(t.d, t.font, 2, int16((i+1)*lineHeight), l, t.FG)
	}
	t.flush()
}

func (t *DisplayTargets) fill(x0, y0, w, h int16) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			t.d.SetPixel(x, y, t.BG)
		}
	}
}

func (t *DisplayTargets) flush() {
	if err := t.d.Display(); err != nil {
		touchpad.Logf("setup: failed to refresh display: %v", err)
	}
}

// ConsoleTargets prints instructions for boards whose display is driven by
// another program.
type ConsoleTargets struct {
	W             io.Writer
	Width, Height int16
}

// Size implements Targets.
func (t *ConsoleTargets) Size() (x, y int16) {
	return t.Width, t.Height
}

// Show implements Targets.
func (t *ConsoleTargets) Show(n, row, col int) {
	fmt.Fprintf(t.W, "Touch cross %d at row %d, col %d.\n", n+1, row, col)
}

// Clear implements Targets.
func (t *ConsoleTargets) Clear() {}

// Message implements Targets.
func (t *ConsoleTargets) Message(s string) {
	fmt.Fprintln(t.W, s)
}
