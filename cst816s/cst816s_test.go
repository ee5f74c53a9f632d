package cst816s

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/devices/v3/touchpad"
)

// irqPin reports buffered edges without racing a zero timeout against the
// edge channel.
type irqPin struct {
	gpiotest.Pin
}

func (p *irqPin) WaitForEdge(timeout time.Duration) bool {
	select {
	case l := <-p.EdgesChan:
		_ = p.Out(l)
		return true
	default:
		return false
	}
}

func (p *irqPin) pulse() {
	p.EdgesChan <- gpio.High
}

// rstPin records reset transitions.
type rstPin struct {
	gpiotest.Pin
	levels []gpio.Level
}

func (p *rstPin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return p.Pin.Out(l)
}

func report(gesture, fingers byte, ev byte, x, y int) []byte {
	return []byte{gesture, fingers, ev | byte(x>>8)&0x0F, byte(x), byte(y>>8) & 0x0F, byte(y)}
}

func newDev(t *testing.T, ops []i2ctest.IO) (*Dev, *irqPin, *i2ctest.Playback) {
	t.Helper()
	bus := &i2ctest.Playback{Ops: ops}
	irq := &irqPin{Pin: gpiotest.Pin{N: "IRQ", EdgesChan: make(chan gpio.Level, 4)}}
	rst := &rstPin{Pin: gpiotest.Pin{N: "RST"}}
	d, err := New(bus, rst, irq, nil)
	require.NoError(t, err)
	assert.Equal(t, []gpio.Level{gpio.Low, gpio.High}, rst.levels)
	return d, irq, bus
}

func TestAcquire(t *testing.T) {
	d, irq, bus := newDev(t, []i2ctest.IO{
		{Addr: 0x15, W: []byte{regVersion}, R: []byte{0xB5, 0x01, 0x02}},
		{Addr: 0x15, W: []byte{regGesture}, R: report(0, 1, 0x80, 120, 200)},
		{Addr: 0x15, W: []byte{regGesture}, R: report(0, 1, 0x80, 121, 230)},
		{Addr: 0x15, W: []byte{regGesture}, R: report(0, 0, 0x40, 121, 230)},
		{Addr: 0x15, W: []byte{regGesture}, R: report(0, 1, 0x00, 10, 20)},
		{Addr: 0x15, W: []byte{regGesture}, R: report(gestureRelease, 0, 0x00, 10, 20)},
	})

	assert.Equal(t, touchpad.Sample{}, d.Acquire(), "no interrupt yet")
	assert.Equal(t, [3]byte{}, d.Version())

	irq.pulse()
	want := touchpad.Sample{X: 120, Y: 200, Touched: true}
	assert.Equal(t, want, d.Acquire())
	assert.Equal(t, [3]byte{0xB5, 0x01, 0x02}, d.Version())
	assert.Equal(t, want, d.Acquire(), "state latches between interrupts")

	irq.pulse()
	assert.Equal(t, touchpad.Sample{X: 121, Y: 230, Touched: true}, d.Acquire())

	irq.pulse()
	assert.False(t, d.Acquire().Touched, "event up")
	assert.False(t, d.Acquire().Touched)

	irq.pulse()
	assert.True(t, d.Acquire().Touched)
	irq.pulse()
	assert.False(t, d.Acquire().Touched, "release gesture")

	assert.NoError(t, bus.Close())
}

func TestAcquireBusError(t *testing.T) {
	d, irq, _ := newDev(t, nil)
	d.bus = &i2ctest.Playback{DontPanic: true}
	d.last = touchpad.Sample{X: 1, Y: 1, Touched: true}
	irq.pulse()
	assert.Equal(t, touchpad.Sample{}, d.Acquire())
	assert.Equal(t, [3]byte{}, d.Version())
}

func TestNew(t *testing.T) {
	_, err := New(&i2ctest.Playback{}, nil, nil, nil)
	assert.Error(t, err)

	// Edge detection needs an edge channel on the test pin.
	_, err = New(&i2ctest.Playback{}, nil, &gpiotest.Pin{N: "IRQ"}, nil)
	assert.ErrorContains(t, err, "cst816s: failed to configure interrupt")

	d, err := New(&i2ctest.Playback{}, nil, &irqPin{Pin: gpiotest.Pin{EdgesChan: make(chan gpio.Level)}}, &Opts{Addr: 0x16})
	require.NoError(t, err)
	assert.Equal(t, "cst816s.Dev{0x16}", d.String())
}
