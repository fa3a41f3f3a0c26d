package display

import (
	"maps"
	"slices"
	"strings"
)

// Sign colors of the CTA wayfinding system.
var (
	SignGrey   = FromHex(0x565a5c)
	SignOrange = FromHex(0xffa600)
)

// LineColors maps the CTA rail line names to their official colors.
var LineColors = map[string]Color{
	"red":    FromHex(0xc60c30),
	"blue":   FromHex(0x00a1de),
	"brown":  FromHex(0x62361b),
	"green":  FromHex(0x009b3a),
	"orange": FromHex(0xf9461c),
	"purple": FromHex(0x522398),
	"pink":   FromHex(0xe27ea6),
	"yellow": FromHex(0xf9e300),
}

// LineNames returns the keys of LineColors in a stable order.
func LineNames() []string {
	return slices.Sorted(maps.Keys(LineColors))
}

// LineColor looks up the color for a line name, case-insensitively.
func LineColor(name string) (Color, bool) {
	c, ok := LineColors[strings.ToLower(name)]
	return c, ok
}
