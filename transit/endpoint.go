package transit

import (
	"fmt"
	"net/url"
	"strings"
)

// Feed selects the upstream tracker API.
type Feed string

const (
	BusFeed   Feed = "bus"
	TrainFeed Feed = "train"
)

const (
	DefaultBusURL   = "http://www.ctabustracker.com/bustime/api/v2/getpredictions"
	DefaultTrainURL = "http://lapi.transitchicago.com/api/1.0/ttarrivals.aspx"
)

// Endpoint describes the single stop and route the sign tracks.
type Endpoint struct {
	Feed    Feed
	BaseURL string
	APIKey  string
	Route   string
	Stop    string
}

// URL builds the full request target including the query. It fails for
// unknown feeds and for base URLs without scheme or host.
func (e Endpoint) URL() (*url.URL, error) {
	base := strings.TrimSpace(e.BaseURL)
	if base == "" {
		switch e.Feed {
		case BusFeed:
			base = DefaultBusURL
		case TrainFeed:
			base = DefaultTrainURL
		default:
			return nil, fmt.Errorf("unknown feed %q", e.Feed)
		}
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint url %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint url %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint url %q: missing host", base)
	}

	q := u.Query()
	q.Set("key", e.APIKey)
	switch e.Feed {
	case BusFeed:
		q.Set("format", "json")
		if e.Route != "" {
			q.Set("rt", e.Route)
		}
		q.Set("stpid", e.Stop)
	case TrainFeed:
		q.Set("outputType", "JSON")
		if e.Route != "" {
			q.Set("rt", e.Route)
		}
		q.Set("mapid", e.Stop)
	default:
		return nil, fmt.Errorf("unknown feed %q", e.Feed)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

// Normalizer returns the payload normalizer matching the feed.
func (e Endpoint) Normalizer() Normalizer {
	if e.Feed == TrainFeed {
		return NormalizeTrain
	}
	return NormalizeBus
}
