// Package dimmer lowers the panel brightness between sunset and sunrise.
package dimmer

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

type Dimmer struct {
	latitude  float64
	longitude float64
	day       int
	night     int
}

func New(latitude, longitude float64, day, night int) *Dimmer {
	return &Dimmer{
		latitude:  latitude,
		longitude: longitude,
		day:       day,
		night:     night,
	}
}

// IsDay reports whether now lies between a sunrise and the following
// sunset. Sunset for a given UTC date may fall on the next UTC day, so
// the neighbouring dates are checked too. Polar day and night (zero
// times) count as day.
func (d *Dimmer) IsDay(now time.Time) bool {
	now = now.UTC()
	for _, offset := range []int{-1, 0, 1} {
		date := now.AddDate(0, 0, offset)
		rise, set := sunrise.SunriseSunset(d.latitude, d.longitude, date.Year(), date.Month(), date.Day())
		if rise.IsZero() || set.IsZero() {
			return true
		}
		if now.After(rise) && now.Before(set) {
			return true
		}
	}
	return false
}

// Level returns the brightness to apply at the given time.
func (d *Dimmer) Level(now time.Time) int {
	if d.IsDay(now) {
		return d.day
	}
	return d.night
}

// Local Variables:
// compile-command: "cd .. && go build"
// End:
