package platform

import (
	"math/bits"
	"time"

	"github.com/zatchheems/yactatt/display"
)

// gpioPin is the part of rpio.Pin the scanner needs.
type gpioPin interface {
	High()
	Low()
}

type hub75Pins struct {
	oe, clock, strobe gpioPin
	address           []gpioPin
	r1, g1, b1        gpioPin
	r2, g2, b2        gpioPin
}

// hub75Scanner bit-bangs frames to a HUB75 panel. The panel is split
// into an upper and a lower half that are shifted in parallel; each row
// pair is shown once per bitplane, with binary-weighted on times. The
// panel only lights the row pair latched last, so it has to be scanned
// over and over.
type hub75Scanner struct {
	pins     hub75Pins
	rows     int
	cols     int
	pwmBits  int
	lsb      time.Duration
	busyWait func(time.Duration)
	now      func() time.Time
}

func newHub75Scanner(pins hub75Pins, rows, cols, pwmBits int, lsb time.Duration) *hub75Scanner {
	return &hub75Scanner{
		pins:     pins,
		rows:     rows,
		cols:     cols,
		pwmBits:  pwmBits,
		lsb:      lsb,
		busyWait: spin,
		now:      time.Now,
	}
}

// addressLines is the number of row-select lines for a panel height.
func addressLines(rows int) int {
	return bits.Len(uint(rows/2 - 1))
}

func spin(d time.Duration) {
	end := time.Now().Add(d)
	for time.Now().Before(end) {
	}
}

func setPin(p gpioPin, on bool) {
	if on {
		p.High()
	} else {
		p.Low()
	}
}

// refresh scans front until deadline, at least once.
func (s *hub75Scanner) refresh(front *display.Canvas, brightness int, deadline time.Time) {
	for {
		s.scan(front, brightness)
		if !s.now().Before(deadline) {
			return
		}
	}
}

// scan puts every bitplane of every row pair on the panel once. Colors
// are shifted out at full depth; brightness only shortens the time the
// output is enabled, so dim settings never drop a channel.
func (s *hub75Scanner) scan(front *display.Canvas, brightness int) {
	brightness = min(max(brightness, 1), 100)
	half := s.rows / 2
	for plane := range s.pwmBits {
		// Use the most significant bits of each channel.
		bit := uint(8 - s.pwmBits + plane)
		slot := s.lsb << plane
		on := slot * time.Duration(brightness) / 100
		for row := range half {
			for x := range s.cols {
				top := front.At(x, row)
				bottom := front.At(x, row+half)
				setPin(s.pins.r1, top.Red>>bit&1 == 1)
				setPin(s.pins.g1, top.Green>>bit&1 == 1)
				setPin(s.pins.b1, top.Blue>>bit&1 == 1)
				setPin(s.pins.r2, bottom.Red>>bit&1 == 1)
				setPin(s.pins.g2, bottom.Green>>bit&1 == 1)
				setPin(s.pins.b2, bottom.Blue>>bit&1 == 1)
				s.pins.clock.High()
				s.pins.clock.Low()
			}

			s.pins.oe.High()
			for i, a := range s.pins.address {
				setPin(a, row>>i&1 == 1)
			}
			s.pins.strobe.High()
			s.pins.strobe.Low()
			if on > 0 {
				s.pins.oe.Low()
				s.busyWait(on)
				s.pins.oe.High()
			}
			// Keep the row timing independent of brightness.
			if off := slot - on; off > 0 {
				s.busyWait(off)
			}
		}
	}
}

// blank turns every LED off and disables the output.
func (s *hub75Scanner) blank() {
	for _, p := range []gpioPin{s.pins.r1, s.pins.g1, s.pins.b1, s.pins.r2, s.pins.g2, s.pins.b2} {
		p.Low()
	}
	for range s.cols {
		s.pins.clock.High()
		s.pins.clock.Low()
	}
	s.pins.strobe.High()
	s.pins.strobe.Low()
	s.pins.oe.High()
}
