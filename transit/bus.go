package transit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout of bus tracker timestamps, e.g. "20240115 14:32".
const busTimeLayout = "20060102 15:04"

type busResponse struct {
	Body *busBody `json:"bustime-response"`
}

// busBody carries either predictions or errors. Both keys may be
// present on the wire.
type busBody struct {
	Predictions []busPrediction `json:"prd"`
	Errors      []busError      `json:"error"`
}

type busPrediction struct {
	Timestamp     string `json:"tmstmp"`
	Type          string `json:"typ"`
	StopName      string `json:"stpnm"`
	StopID        string `json:"stpid"`
	VehicleID     string `json:"vid"`
	Route         string `json:"rt"`
	Direction     string `json:"rtdir"`
	Destination   string `json:"des"`
	PredictedTime string `json:"prdtm"`
	Delayed       bool   `json:"dly"`
	Countdown     string `json:"prdctdn"`
}

type busError struct {
	Route   string `json:"rt"`
	StopID  string `json:"stpid"`
	Message string `json:"msg"`
}

// NormalizeBus converts a bus tracker getpredictions payload. Non-empty
// predictions win over errors; predictions without a route or countdown
// are dropped. Upstream order is preserved.
func NormalizeBus(raw []byte) Outcome {
	var resp busResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return TransportFailure{Kind: DecodeError, StatusCode: 200, Err: fmt.Errorf("decoding bus predictions: %w", err)}
	}
	if resp.Body == nil {
		return TransportFailure{Kind: DecodeError, StatusCode: 200, Err: errors.New("decoding bus predictions: missing bustime-response")}
	}

	if len(resp.Body.Predictions) == 0 && len(resp.Body.Errors) > 0 {
		errs := make(ServiceErrors, 0, len(resp.Body.Errors))
		for _, e := range resp.Body.Errors {
			errs = append(errs, ServiceError{Route: e.Route, Stop: e.StopID, Message: e.Message})
		}
		return errs
	}

	arrivals := make(Arrivals, 0, len(resp.Body.Predictions))
	for _, p := range resp.Body.Predictions {
		a := Arrival{
			Route:       strings.TrimSpace(p.Route),
			Destination: strings.TrimSpace(p.Destination),
			ETA:         strings.TrimSpace(p.Countdown),
			Kind:        BusPrediction,
			Delayed:     p.Delayed,
			Stop:        p.StopID,
			Direction:   p.Direction,
		}
		if t, err := time.ParseInLocation(busTimeLayout, p.PredictedTime, agencyLocation); err == nil {
			a.Predicted = t
		}
		if a.Valid() {
			arrivals = append(arrivals, a)
		}
	}
	return arrivals
}
