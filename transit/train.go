package transit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout of train tracker timestamps, e.g. "2024-01-15T14:32:10".
const trainTimeLayout = "2006-01-02T15:04:05"

type trainResponse struct {
	Body *trainBody `json:"ctatt"`
}

type trainBody struct {
	Timestamp    string         `json:"tmst"`
	ErrorCode    string         `json:"errCd"`
	ErrorMessage *string        `json:"errNm"`
	Etas         []trainArrival `json:"eta"`
}

type trainArrival struct {
	StationID   string `json:"staId"`
	StopID      string `json:"stpId"`
	StationName string `json:"staNm"`
	StopDesc    string `json:"stpDe"`
	RunNumber   string `json:"rn"`
	Route       string `json:"rt"`
	Destination string `json:"destNm"`
	Direction   string `json:"trDr"`
	Predicted   string `json:"prdt"`
	Arrival     string `json:"arrT"`
	Approaching string `json:"isApp"`
	Scheduled   string `json:"isSch"`
	Delayed     string `json:"isDly"`
	Fault       string `json:"isFlt"`
}

type trainLine struct {
	name  string
	label string
}

// Route codes of the train tracker API.
var trainLines = map[string]trainLine{
	"red":  {name: "red", label: "RD"},
	"blue": {name: "blue", label: "BL"},
	"brn":  {name: "brown", label: "BR"},
	"g":    {name: "green", label: "GR"},
	"org":  {name: "orange", label: "OR"},
	"p":    {name: "purple", label: "PR"},
	"pexp": {name: "purple", label: "PX"},
	"pink": {name: "pink", label: "PK"},
	"y":    {name: "yellow", label: "YL"},
}

// NormalizeTrain converts a train tracker ttarrivals payload. A non-zero
// error code becomes ServiceErrors; otherwise each eta entry with a route
// and a parsable arrival time becomes an Arrival, in upstream order.
func NormalizeTrain(raw []byte) Outcome {
	var resp trainResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return TransportFailure{Kind: DecodeError, StatusCode: 200, Err: fmt.Errorf("decoding train arrivals: %w", err)}
	}
	if resp.Body == nil {
		return TransportFailure{Kind: DecodeError, StatusCode: 200, Err: errors.New("decoding train arrivals: missing ctatt")}
	}

	body := resp.Body
	if code := strings.TrimSpace(body.ErrorCode); code != "" && code != "0" && len(body.Etas) == 0 {
		msg := "error code " + code
		if body.ErrorMessage != nil && *body.ErrorMessage != "" {
			msg = *body.ErrorMessage
		}
		return ServiceErrors{{Message: msg}}
	}

	arrivals := make(Arrivals, 0, len(body.Etas))
	for _, e := range body.Etas {
		if a, ok := e.toArrival(); ok {
			arrivals = append(arrivals, a)
		}
	}
	return arrivals
}

func (e trainArrival) toArrival() (Arrival, bool) {
	route := strings.TrimSpace(e.Route)
	if route == "" {
		return Arrival{}, false
	}
	arrival, err := time.ParseInLocation(trainTimeLayout, e.Arrival, agencyLocation)
	if err != nil {
		return Arrival{}, false
	}
	predicted, err := time.ParseInLocation(trainTimeLayout, e.Predicted, agencyLocation)
	if err != nil {
		return Arrival{}, false
	}

	a := Arrival{
		Route:       route,
		Destination: strings.TrimSpace(e.Destination),
		Kind:        TrainPrediction,
		Delayed:     e.Delayed == "1",
		Stop:        e.StopID,
		Direction:   e.StopDesc,
		Predicted:   arrival,
	}
	if line, ok := trainLines[strings.ToLower(route)]; ok {
		a.Route = line.label
		a.Line = line.name
	}

	minutes := int(arrival.Sub(predicted) / time.Minute)
	switch {
	case a.Delayed:
		a.ETA = "Dly"
	case e.Approaching == "1" || minutes < 1:
		a.ETA = "Due"
	default:
		a.ETA = fmt.Sprintf("%d", minutes)
	}
	return a, true
}
