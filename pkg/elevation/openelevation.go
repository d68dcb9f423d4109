// Package elevation implements the engine's ElevationProvider capability
// against the Open-Elevation lookup API.
package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

const (
	// maxLocationsPerRequest is the service-side cap on one lookup call;
	// larger batches are chunked transparently.
	maxLocationsPerRequest = 100

	defaultBaseURL   = "https://api.open-elevation.com"
	defaultUserAgent = "VetRender RF Tool/1.0"
)

// Client queries the Open-Elevation batch lookup endpoint. The zero value is
// not usable; construct with NewClient.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different Open-Elevation-compatible
// service, e.g. a self-hosted instance.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithTimeout replaces the default 30 s request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds an Open-Elevation client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lookupResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// Elevations resolves ground elevations (metres) for the given points, in
// order. Points are orb.Point values in lon/lat order. Batches beyond the
// service's 100-location cap are split into sequential requests; any failed
// request fails the whole batch so the caller can degrade the ray it belongs
// to.
func (c *Client) Elevations(ctx context.Context, points []orb.Point) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	out := make([]float64, 0, len(points))
	for start := 0; start < len(points); start += maxLocationsPerRequest {
		end := start + maxLocationsPerRequest
		if end > len(points) {
			end = len(points)
		}
		chunk, err := c.lookup(ctx, points[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (c *Client) lookup(ctx context.Context, points []orb.Point) ([]float64, error) {
	var locs strings.Builder
	for i, p := range points {
		if i > 0 {
			locs.WriteByte('|')
		}
		// The API wants lat,lon; orb points are lon/lat.
		fmt.Fprintf(&locs, "%.6f,%.6f", p.Lat(), p.Lon())
	}

	u := c.baseURL + "/api/v1/lookup?locations=" + url.QueryEscape(locs.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the error message, then bail.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("elevation lookup: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode elevation response: %w", err)
	}
	if len(decoded.Results) != len(points) {
		return nil, fmt.Errorf("elevation lookup: got %d results for %d locations", len(decoded.Results), len(points))
	}

	elevations := make([]float64, len(decoded.Results))
	for i, r := range decoded.Results {
		elevations[i] = r.Elevation
	}
	return elevations, nil
}
