package platform

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/zatchheems/yactatt/config"
	"github.com/zatchheems/yactatt/display"
)

type RaspberryPiPlatform struct {
	*AbstractPlatform
	scanner     *hub75Scanner
	frameViewer *FrameViewer
	readyChan   chan bool
	opened      bool
}

func NewRaspberryPiPlatform(conf config.DisplayConfig) *RaspberryPiPlatform {
	inst := &RaspberryPiPlatform{
		readyChan: make(chan bool),
	}
	inst.AbstractPlatform = newAbstractPlatform(conf, conf.RefreshRate, inst.rpiScan)
	return inst
}

func (s *RaspberryPiPlatform) Ready() <-chan bool {
	return s.readyChan
}

// SetFrameViewer attaches an optional TUI viewer for frame timing.
func (s *RaspberryPiPlatform) SetFrameViewer(v *FrameViewer) {
	s.frameViewer = v
	s.onStats = v.Update
}

func (s *RaspberryPiPlatform) Start() error {
	mapping, err := LookupHardwareMapping(s.config.HardwareMapping)
	if err != nil {
		return &HardwareInitError{Err: err}
	}
	lines := addressLines(s.config.Rows)
	if lines > len(mapping.Address) {
		return &HardwareInitError{Err: fmt.Errorf("%d rows need %d address lines, mapping %s has %d", s.config.Rows, lines, mapping.Name, len(mapping.Address))}
	}

	slog.Info("Initialise GPIO...", "mapping", mapping.Name, "rows", s.config.Rows, "cols", s.config.Cols)
	if err := rpio.Open(); err != nil {
		return &HardwareInitError{Err: fmt.Errorf("failed to open gpio memory: %w", err)}
	}
	s.opened = true

	output := func(n int) gpioPin {
		pin := rpio.Pin(n)
		pin.Output()
		pin.Low()
		return pin
	}
	pins := hub75Pins{
		oe:     output(mapping.OE),
		clock:  output(mapping.Clock),
		strobe: output(mapping.Strobe),
		r1:     output(mapping.RGB1[0]),
		g1:     output(mapping.RGB1[1]),
		b1:     output(mapping.RGB1[2]),
		r2:     output(mapping.RGB2[0]),
		g2:     output(mapping.RGB2[1]),
		b2:     output(mapping.RGB2[2]),
	}
	for _, n := range mapping.Address[:lines] {
		pins.address = append(pins.address, output(n))
	}
	pins.oe.High()

	lsb := time.Duration(s.config.PWMLSBNanoseconds) * time.Nanosecond
	s.scanner = newHub75Scanner(pins, s.config.Rows, s.config.Cols, s.config.PWMBits, lsb)

	if s.frameViewer != nil {
		go s.frameViewer.Start()
	}

	s.startDriver()

	close(s.readyChan) // For RPi, we are ready immediately.
	return nil
}

func (s *RaspberryPiPlatform) Stop() {
	s.stopDriver()

	if s.scanner != nil {
		s.scanner.blank()
	}
	if s.opened {
		if err := rpio.Close(); err != nil {
			slog.Error("Error closing gpio", "error", err)
		}
		s.opened = false
	}

	if s.frameViewer != nil {
		s.frameViewer.Stop()
	}
}

func (s *RaspberryPiPlatform) rpiScan(front *display.Canvas, brightness int, deadline time.Time) {
	s.scanner.refresh(front, brightness, deadline)
}
