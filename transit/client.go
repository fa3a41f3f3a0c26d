package transit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/klauspost/compress/gzhttp"
)

const (
	UserAgent = "yactatt/1.0"
	// Tracker responses for a single stop are a few kilobytes.
	maxBodySize = 4 << 20
)

// Client performs one GET per Fetch against a fixed endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   *url.URL
	normalize  Normalizer
}

// NewClient creates a client with the given per-request timeout. With
// gzip set, responses are requested compressed and inflated transparently.
func NewClient(endpoint *url.URL, normalize Normalizer, timeout time.Duration, gzip bool) *Client {
	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        2,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if gzip {
		transport = gzhttp.Transport(transport)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		endpoint:  endpoint,
		normalize: normalize,
	}
}

// Endpoint returns the request target with the API key removed, for logging.
func (c *Client) Endpoint() string {
	u := *c.endpoint
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch issues the request and classifies the result. It never returns
// nil and never panics on bad payloads.
func (c *Client) Fetch(ctx context.Context) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.String(), nil)
	if err != nil {
		return TransportFailure{Kind: Unclassified, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportFailure{Kind: Unclassified, Err: fmt.Errorf("failed to fetch predictions: %w", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return TransportFailure{Kind: Unclassified, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
		}
		return c.annotate(c.normalize(body))
	case http.StatusBadRequest:
		drain(resp.Body)
		return TransportFailure{Kind: BadRequest, StatusCode: resp.StatusCode}
	case http.StatusUnauthorized:
		drain(resp.Body)
		return TransportFailure{Kind: Unauthorized, StatusCode: resp.StatusCode}
	default:
		drain(resp.Body)
		return TransportFailure{Kind: Unclassified, StatusCode: resp.StatusCode}
	}
}

// annotate fills in the route and stop of service errors that the
// upstream left out, from the request itself.
func (c *Client) annotate(outcome Outcome) Outcome {
	errs, ok := outcome.(ServiceErrors)
	if !ok {
		return outcome
	}
	q := c.endpoint.Query()
	stop := q.Get("stpid")
	if stop == "" {
		stop = q.Get("mapid")
	}
	for i := range errs {
		if errs[i].Route == "" {
			errs[i].Route = q.Get("rt")
		}
		if errs[i].Stop == "" {
			errs[i].Stop = stop
		}
	}
	return errs
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxBodySize))
}
