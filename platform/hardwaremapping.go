package platform

import "fmt"

// HardwareMapping names the BCM GPIO numbers a HUB75 panel is wired to.
type HardwareMapping struct {
	Name   string
	OE     int
	Clock  int
	Strobe int
	// Address lines A..E; panels use as many as log2(rows/2).
	Address [5]int
	// Data lines for the upper (1) and lower (2) half of the panel.
	RGB1 [3]int
	RGB2 [3]int
}

var hardwareMappings = map[string]HardwareMapping{
	"regular": {
		Name:    "regular",
		OE:      18,
		Clock:   17,
		Strobe:  4,
		Address: [5]int{22, 23, 24, 25, 15},
		RGB1:    [3]int{11, 27, 7},
		RGB2:    [3]int{8, 9, 10},
	},
	"adafruit-hat": {
		Name:    "adafruit-hat",
		OE:      4,
		Clock:   17,
		Strobe:  21,
		Address: [5]int{22, 26, 27, 20, 24},
		RGB1:    [3]int{5, 13, 6},
		RGB2:    [3]int{12, 16, 23},
	},
	// Same as adafruit-hat with OE moved to GPIO18 for hardware PWM.
	"adafruit-hat-pwm": {
		Name:    "adafruit-hat-pwm",
		OE:      18,
		Clock:   17,
		Strobe:  21,
		Address: [5]int{22, 26, 27, 20, 24},
		RGB1:    [3]int{5, 13, 6},
		RGB2:    [3]int{12, 16, 23},
	},
}

func LookupHardwareMapping(name string) (HardwareMapping, error) {
	m, ok := hardwareMappings[name]
	if !ok {
		return HardwareMapping{}, fmt.Errorf("unknown hardware mapping %q", name)
	}
	return m, nil
}
