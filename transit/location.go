package transit

import (
	"time"
	_ "time/tzdata"
)

// agencyLocation is the zone the tracker APIs report local times in.
var agencyLocation = loadLocation("America/Chicago")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
