package display

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a single LED value. Channels are always stored in R, G, B
// order; drivers that need a different wire order reorder on output.
type Color struct {
	Red   byte
	Green byte
	Blue  byte
}

var Black = Color{}

// FromHex splits a 0xRRGGBB value into its channels.
func FromHex(rgb uint32) Color {
	return Color{
		Red:   byte((rgb >> 16) & 0xFF),
		Green: byte((rgb >> 8) & 0xFF),
		Blue:  byte(rgb & 0xFF),
	}
}

// ParseHex parses "#rrggbb" (or "#rgb") into a Color.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{Red: r, Green: g, Blue: b}, nil
}

// True if all components are zero, false otherwise
func (c Color) IsEmpty() bool {
	return c.Red == 0 && c.Green == 0 && c.Blue == 0
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)
}
