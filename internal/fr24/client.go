// Package fr24 implements the client for the historical flight-position
// API. The API returns full position records (lat/lon, altitude, speed,
// ETA) for a single point in time; callers sweep a time range by issuing
// one query per timestamp. Authentication is a bearer token; rate limiting
// surfaces as 429 with Retry-After and is absorbed by the underlying
// httpds client.
package fr24

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"flightetl/internal/datasource/httpds"
)

// DefaultBaseURL is the production endpoint for historic full positions.
const DefaultBaseURL = "https://fr24api.flightradar24.com/api/historic/flight-positions/full"

// Position is one historical position record as returned by the API.
// String fields stay strings; the pipeline treats them as opaque cells.
type Position struct {
	FR24ID      string  `json:"fr24_id"`
	Flight      string  `json:"flight"`
	Callsign    string  `json:"callsign"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Track       int     `json:"track"`
	Alt         int     `json:"alt"`
	GSpeed      int     `json:"gspeed"`
	VSpeed      int     `json:"vspeed"`
	Squawk      string  `json:"squawk"`
	Timestamp   string  `json:"timestamp"`
	Source      string  `json:"source"`
	Hex         string  `json:"hex"`
	Type        string  `json:"type"`
	Reg         string  `json:"reg"`
	PaintedAs   string  `json:"painted_as"`
	OperatingAs string  `json:"operating_as"`
	OrigIATA    string  `json:"orig_iata"`
	OrigICAO    string  `json:"orig_icao"`
	DestIATA    string  `json:"dest_iata"`
	DestICAO    string  `json:"dest_icao"`
	ETA         string  `json:"eta"`
}

// Query is the filter set for one position request. Zero-valued fields are
// omitted from the request.
type Query struct {
	// Routes are ORIG-DEST pairs sent as a comma-joined list. The server
	// caps the list at 15 routes per request.
	Routes []string

	// Bounds is a "north,south,west,east" lat/lon box.
	Bounds string

	// OperatingAs / PaintedAs filter by the operating and livery carrier
	// ICAO codes.
	OperatingAs string
	PaintedAs   string

	// Limit caps the number of records per response.
	Limit int
}

// Client talks to the position API.
type Client struct {
	http    *httpds.Client
	baseURL string
}

// Option mutates a Client at construction time.
type Option func(*Client)

// WithBaseURL points the client at a non-production endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying retrying HTTP client.
func WithHTTPClient(h *httpds.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a Client authenticating with the given bearer token.
func NewClient(token string, opts ...Option) *Client {
	hdr := http.Header{}
	hdr.Set("Accept", "application/json")
	hdr.Set("Accept-Version", "v1")
	hdr.Set("Authorization", "Bearer "+token)

	c := &Client{
		http: httpds.NewClient(httpds.Config{
			MaxRetries:  3,
			BaseHeaders: hdr,
		}),
		baseURL: DefaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// HistoricPositions fetches all position records at the given Unix
// timestamp matching q.
func (c *Client) HistoricPositions(ctx context.Context, ts int64, q Query) ([]Position, error) {
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(ts, 10))
	if len(q.Routes) > 0 {
		params.Set("routes", joinRoutes(q.Routes))
	}
	if q.Bounds != "" {
		params.Set("bounds", q.Bounds)
	}
	if q.OperatingAs != "" {
		params.Set("operating_as", q.OperatingAs)
	}
	if q.PaintedAs != "" {
		params.Set("painted_as", q.PaintedAs)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	resp, err := c.http.Get(ctx, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fr24: query ts=%d: %w", ts, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fr24: query ts=%d: status %d: %s", ts, resp.StatusCode, body)
	}

	var payload struct {
		Data []Position `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("fr24: decode response for ts=%d: %w", ts, err)
	}
	return payload.Data, nil
}

// Timestamps enumerates the Unix timestamps of a sweep: start, then every
// interval up to and including end.
func Timestamps(start, end time.Time, interval time.Duration) []int64 {
	var out []int64
	for t := start; !t.After(end); t = t.Add(interval) {
		out = append(out, t.Unix())
	}
	return out
}

func joinRoutes(routes []string) string {
	s := ""
	for i, r := range routes {
		if i > 0 {
			s += ","
		}
		s += r
	}
	return s
}
