package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint_URL_Bus(t *testing.T) {
	e := Endpoint{Feed: BusFeed, APIKey: "secret", Route: "50", Stop: "1802"}
	u, err := e.URL()
	require.NoError(t, err)

	assert.Equal(t, "www.ctabustracker.com", u.Host)
	assert.Equal(t, "/bustime/api/v2/getpredictions", u.Path)
	q := u.Query()
	assert.Equal(t, "secret", q.Get("key"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "50", q.Get("rt"))
	assert.Equal(t, "1802", q.Get("stpid"))
}

func TestEndpoint_URL_Train(t *testing.T) {
	e := Endpoint{Feed: TrainFeed, APIKey: "secret", Stop: "40380"}
	u, err := e.URL()
	require.NoError(t, err)

	assert.Equal(t, "lapi.transitchicago.com", u.Host)
	q := u.Query()
	assert.Equal(t, "JSON", q.Get("outputType"))
	assert.Equal(t, "40380", q.Get("mapid"))
	assert.False(t, q.Has("rt"))
}

func TestEndpoint_URL_CustomBase(t *testing.T) {
	e := Endpoint{Feed: BusFeed, BaseURL: "https://proxy.local:8443/predictions?debug=1", Stop: "1"}
	u, err := e.URL()
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:8443", u.Host)
	assert.Equal(t, "1", u.Query().Get("debug"))
	assert.Equal(t, "1", u.Query().Get("stpid"))
}

func TestEndpoint_URL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		e    Endpoint
	}{
		{"unknown feed", Endpoint{Feed: "ferry"}},
		{"no scheme", Endpoint{Feed: BusFeed, BaseURL: "www.example.com/api"}},
		{"ftp scheme", Endpoint{Feed: BusFeed, BaseURL: "ftp://example.com/api"}},
		{"no host", Endpoint{Feed: BusFeed, BaseURL: "http:///api"}},
		{"unparsable", Endpoint{Feed: TrainFeed, BaseURL: "http://[::1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.e.URL()
			assert.Error(t, err)
		})
	}
}

func TestEndpoint_Normalizer(t *testing.T) {
	raw := []byte(busNoService)
	_, isBus := Endpoint{Feed: BusFeed}.Normalizer()(raw).(ServiceErrors)
	assert.True(t, isBus)

	_, isTrain := Endpoint{Feed: TrainFeed}.Normalizer()(raw).(TransportFailure)
	assert.True(t, isTrain)
}
