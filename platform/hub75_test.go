package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatchheems/yactatt/config"
	"github.com/zatchheems/yactatt/display"
)

type fakePin struct {
	state bool
	highs int
}

func (p *fakePin) High() { p.state = true; p.highs++ }
func (p *fakePin) Low()  { p.state = false }

// shift records the data lines at every rising clock edge.
type shift struct {
	r1, g1, b1, r2, g2, b2 bool
}

type latch struct {
	row   int
	shift []shift
}

type fakePanel struct {
	pins    hub75Pins
	data    [6]*fakePin
	address []*fakePin
	shifted []shift
	latches []latch
}

type clockPin struct {
	fakePin
	panel *fakePanel
}

func (c *clockPin) High() {
	c.fakePin.High()
	d := c.panel.data
	c.panel.shifted = append(c.panel.shifted, shift{d[0].state, d[1].state, d[2].state, d[3].state, d[4].state, d[5].state})
}

type strobePin struct {
	fakePin
	panel *fakePanel
}

func (s *strobePin) High() {
	s.fakePin.High()
	row := 0
	for i, a := range s.panel.address {
		if a.state {
			row |= 1 << i
		}
	}
	s.panel.latches = append(s.panel.latches, latch{row: row, shift: s.panel.shifted})
	s.panel.shifted = nil
}

func newFakePanel(addressLines int) *fakePanel {
	fp := &fakePanel{}
	for i := range fp.data {
		fp.data[i] = &fakePin{}
	}
	fp.address = make([]*fakePin, addressLines)
	address := make([]gpioPin, addressLines)
	for i := range fp.address {
		fp.address[i] = &fakePin{}
		address[i] = fp.address[i]
	}
	fp.pins = hub75Pins{
		oe:      &fakePin{},
		clock:   &clockPin{panel: fp},
		strobe:  &strobePin{panel: fp},
		address: address,
		r1:      fp.data[0],
		g1:      fp.data[1],
		b1:      fp.data[2],
		r2:      fp.data[3],
		g2:      fp.data[4],
		b2:      fp.data[5],
	}
	return fp
}

func TestAddressLines(t *testing.T) {
	assert.Equal(t, 2, addressLines(8))
	assert.Equal(t, 3, addressLines(16))
	assert.Equal(t, 4, addressLines(32))
	assert.Equal(t, 5, addressLines(64))
}

func TestHub75Scanner_Scan(t *testing.T) {
	const rows, cols = 8, 4
	panel := newFakePanel(addressLines(rows))
	scanner := newHub75Scanner(panel.pins, rows, cols, 2, 100*time.Nanosecond)
	var waits []time.Duration
	scanner.busyWait = func(d time.Duration) { waits = append(waits, d) }

	canvas := display.NewCanvas(cols, rows)
	canvas.Set(1, 0, display.Color{Red: 0xff})                // top half, row 0
	canvas.Set(2, 5, display.Color{Green: 0x80, Blue: 0x40}) // bottom half, row 1

	scanner.scan(canvas, 100)

	// 2 bitplanes x 4 row pairs
	require.Len(t, panel.latches, 8)
	for i, l := range panel.latches {
		assert.Equal(t, i%4, l.row, "rows are scanned in order")
		assert.Len(t, l.shift, cols)
	}
	assert.Equal(t, []time.Duration{100, 100, 100, 100, 200, 200, 200, 200}, waits)

	// 0xff has both top bits set, so the red pixel shows in both planes.
	assert.True(t, panel.latches[0].shift[1].r1)
	assert.True(t, panel.latches[4].shift[1].r1)
	assert.False(t, panel.latches[0].shift[0].r1)

	// 0x80 is only set in the most significant plane; 0x40 only in the other.
	assert.False(t, panel.latches[1].shift[2].g2)
	assert.True(t, panel.latches[5].shift[2].g2)
	assert.True(t, panel.latches[1].shift[2].b2)
	assert.False(t, panel.latches[5].shift[2].b2)
	assert.False(t, panel.latches[1].shift[2].g1, "lower half pixel must not leak into the upper half")
}

// outputTimer fakes the busy wait: it advances a clock and sums up the
// time the output was enabled (OE low).
type outputTimer struct {
	oe      *fakePin
	now     time.Time
	enabled time.Duration
	waits   []time.Duration
}

func (o *outputTimer) wait(d time.Duration) {
	o.waits = append(o.waits, d)
	if !o.oe.state {
		o.enabled += d
	}
	o.now = o.now.Add(d)
}

func newTimedScanner(panel *fakePanel, rows, cols, pwmBits int, lsb time.Duration) (*hub75Scanner, *outputTimer) {
	scanner := newHub75Scanner(panel.pins, rows, cols, pwmBits, lsb)
	timer := &outputTimer{oe: panel.pins.oe.(*fakePin), now: time.Unix(0, 0)}
	scanner.busyWait = timer.wait
	scanner.now = func() time.Time { return timer.now }
	return scanner, timer
}

func TestHub75Scanner_BrightnessShortensOnTime(t *testing.T) {
	const rows, cols = 8, 2
	panel := newFakePanel(addressLines(rows))
	scanner, timer := newTimedScanner(panel, rows, cols, 1, 100*time.Nanosecond)

	canvas := display.NewCanvas(cols, rows)
	canvas.Set(0, 0, display.Color{Red: 0x90})

	scanner.scan(canvas, 40)

	// dimming must not drop the pixel
	assert.True(t, panel.latches[0].shift[0].r1)
	assert.Equal(t, []time.Duration{40, 60, 40, 60, 40, 60, 40, 60}, timer.waits)
	assert.Equal(t, 160*time.Nanosecond, timer.enabled)
}

func TestHub75Scanner_DefaultPaletteLights(t *testing.T) {
	conf := config.Default().Display
	panel := newFakePanel(addressLines(conf.Rows))
	scanner, _ := newTimedScanner(panel, conf.Rows, conf.Cols, conf.PWMBits, time.Duration(conf.PWMLSBNanoseconds))

	canvas := display.NewCanvas(conf.Cols, conf.Rows)
	canvas.Set(0, 0, display.SignGrey)
	canvas.Set(1, 0, display.SignOrange)

	scanner.scan(canvas, conf.Brightness)

	var grey, orange shift
	for _, l := range panel.latches {
		if l.row != 0 {
			continue
		}
		grey.r1 = grey.r1 || l.shift[0].r1
		grey.g1 = grey.g1 || l.shift[0].g1
		grey.b1 = grey.b1 || l.shift[0].b1
		orange.r1 = orange.r1 || l.shift[1].r1
		orange.g1 = orange.g1 || l.shift[1].g1
		orange.b1 = orange.b1 || l.shift[1].b1
	}
	assert.Equal(t, shift{r1: true, g1: true, b1: true}, grey)
	assert.Equal(t, shift{r1: true, g1: true}, orange)
}

func TestHub75Scanner_RefreshKeepsPanelLit(t *testing.T) {
	conf := config.Default().Display
	const cols = 4
	frame := time.Second / time.Duration(conf.RefreshRate)

	for _, tt := range []struct {
		brightness int
		minDuty    float64
		maxDuty    float64
	}{
		{100, 0.99, 1},
		{conf.Brightness, 0.06, 0.08},
	} {
		panel := newFakePanel(addressLines(conf.Rows))
		scanner, timer := newTimedScanner(panel, conf.Rows, cols, conf.PWMBits, time.Duration(conf.PWMLSBNanoseconds))
		canvas := display.NewCanvas(cols, conf.Rows)
		start := timer.now

		scanner.refresh(canvas, tt.brightness, start.Add(frame))

		elapsed := timer.now.Sub(start)
		assert.GreaterOrEqual(t, elapsed, frame)
		assert.Greater(t, len(panel.latches), conf.Rows/2*conf.PWMBits, "the frame is scanned repeatedly")
		duty := float64(timer.enabled) / float64(elapsed)
		assert.GreaterOrEqual(t, duty, tt.minDuty, "brightness %d", tt.brightness)
		assert.LessOrEqual(t, duty, tt.maxDuty, "brightness %d", tt.brightness)
	}
}

func TestHub75Scanner_RefreshScansOncePastDeadline(t *testing.T) {
	panel := newFakePanel(addressLines(8))
	scanner, timer := newTimedScanner(panel, 8, 2, 1, 100)

	scanner.refresh(display.NewCanvas(2, 8), 100, timer.now.Add(-time.Second))

	assert.Len(t, panel.latches, 4)
}

func TestHub75Scanner_Blank(t *testing.T) {
	panel := newFakePanel(3)
	scanner := newHub75Scanner(panel.pins, 16, 4, 1, 0)
	panel.data[0].state = true

	scanner.blank()

	require.Len(t, panel.latches, 1)
	for _, s := range panel.latches[0].shift {
		assert.Equal(t, shift{}, s)
	}
	assert.True(t, panel.pins.oe.(*fakePin).state, "output stays disabled")
}

func TestLookupHardwareMapping(t *testing.T) {
	m, err := LookupHardwareMapping("adafruit-hat-pwm")
	require.NoError(t, err)
	assert.Equal(t, 18, m.OE)

	_, err = LookupHardwareMapping("nope")
	assert.Error(t, err)
}
