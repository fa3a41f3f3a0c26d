package platform

import (
	"fmt"

	"github.com/zatchheems/yactatt/display"
)

// Platform abstracts the LED matrix hardware away from the terminal
// simulation. Drawing happens on a back buffer owned by the caller;
// SwapOnVSync hands it to the frame driver and returns the next one.
type Platform interface {
	// Start initializes the platform (e.g., opens GPIO, or starts the TUI).
	Start() error

	// Stop cleans up all platform resources.
	Stop()

	// Ready is closed once the platform can show frames.
	Ready() <-chan bool

	// Canvas returns the initial back buffer.
	Canvas() *display.Canvas

	// SwapOnVSync publishes back at the next frame boundary and returns
	// the previous front buffer, which the caller now owns.
	SwapOnVSync(back *display.Canvas) *display.Canvas

	// SetBrightness sets the panel brightness in percent (1..100).
	SetBrightness(percent int)

	// FrameStats summarizes recent frame times.
	FrameStats() FrameStats
}

// HardwareInitError means the panel could not be brought up. It is fatal.
type HardwareInitError struct {
	Err error
}

func (e *HardwareInitError) Error() string {
	return fmt.Sprintf("hardware initialisation failed: %v", e.Err)
}

func (e *HardwareInitError) Unwrap() error {
	return e.Err
}
