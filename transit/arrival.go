package transit

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// VehicleKind tells which upstream feed produced an Arrival.
type VehicleKind int

const (
	BusPrediction VehicleKind = iota
	TrainPrediction
)

func (k VehicleKind) String() string {
	switch k {
	case BusPrediction:
		return "bus"
	case TrainPrediction:
		return "train"
	default:
		return "unknown"
	}
}

// Arrival is one predicted arrival, ready to be drawn as a row on the sign.
type Arrival struct {
	Route       string
	Destination string
	// ETA is the label shown on the sign: a countdown in minutes or a
	// word such as "DUE" or "DLY".
	ETA     string
	Kind    VehicleKind
	Delayed bool

	// Line is the rail line name used for coloring; empty for buses.
	Line      string
	Stop      string
	Direction string
	// Predicted is the raw predicted arrival timestamp, zero if the
	// feed did not provide a parsable one.
	Predicted time.Time
}

// Valid reports whether the arrival has everything a row needs.
func (a Arrival) Valid() bool {
	return strings.TrimSpace(a.Route) != "" && strings.TrimSpace(a.ETA) != ""
}

// Countdown parses the leading integer of an ETA label. "12" and "12 min"
// both yield 12; labels without leading digits report false. Numbers too
// large for an int saturate at math.MaxInt.
func Countdown(label string) (int, bool) {
	label = strings.TrimSpace(label)
	end := strings.IndexFunc(label, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(label)
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(label[:end])
	if err != nil {
		return math.MaxInt, true
	}
	return n, true
}

// IsImminent reports whether the label is a non-numeric word like "DUE".
func IsImminent(label string) bool {
	_, ok := Countdown(label)
	return !ok
}

func sortKey(label string) int {
	if n, ok := Countdown(label); ok {
		return n
	}
	return -1
}

// SortArrivals orders arrivals ascending by countdown, in place. Labels
// without a number sort ahead of every numeric one. Equal keys keep their
// upstream order.
func SortArrivals(arrivals []Arrival) {
	sort.SliceStable(arrivals, func(i, j int) bool {
		return sortKey(arrivals[i].ETA) < sortKey(arrivals[j].ETA)
	})
}
