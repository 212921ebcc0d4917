package fr24

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// FetchConfig describes a full historical sweep: a time range sampled at a
// fixed interval, optionally restricted to a set of routes and carrier
// filters.
type FetchConfig struct {
	Start    time.Time
	End      time.Time
	Interval time.Duration

	// Routes are ORIG-DEST pairs. When longer than BatchSize they are
	// chunked into multiple requests per timestamp.
	Routes []string

	// BatchSize is the number of routes per request, at most 15.
	BatchSize int

	Bounds      string
	OperatingAs string
	PaintedAs   string
	Limit       int

	// Concurrency bounds the number of in-flight requests. Zero means 4.
	Concurrency int

	// Dedupe drops repeated (fr24_id, timestamp) records across queries.
	Dedupe bool
}

// posKey identifies a position record for deduplication. The same aircraft
// at the same instant can come back from overlapping route batches.
type posKey struct {
	id string
	ts string
}

// FetchRange sweeps the configured time range and returns every position
// record collected, ordered by timestamp then fr24_id. Requests run
// concurrently but the result is deterministic for a fixed server state.
func (c *Client) FetchRange(ctx context.Context, cfg FetchConfig) ([]Position, error) {
	stamps := Timestamps(cfg.Start, cfg.End, cfg.Interval)
	batches := chunkRoutes(cfg.Routes, cfg.BatchSize)

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var (
		mu  sync.Mutex
		out []Position
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, ts := range stamps {
		for _, routes := range batches {
			ts, routes := ts, routes
			g.Go(func() error {
				q := Query{
					Routes:      routes,
					Bounds:      cfg.Bounds,
					OperatingAs: cfg.OperatingAs,
					PaintedAs:   cfg.PaintedAs,
					Limit:       cfg.Limit,
				}
				positions, err := c.HistoricPositions(ctx, ts, q)
				if err != nil {
					return err
				}
				mu.Lock()
				out = append(out, positions...)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.Dedupe {
		out = dedupe(out)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].FR24ID < out[j].FR24ID
	})

	log.Printf("fr24: fetched %d positions over %d timestamps x %d route batches",
		len(out), len(stamps), len(batches))
	return out, nil
}

// chunkRoutes splits routes into request-sized groups. An empty route list
// yields a single unrestricted batch.
func chunkRoutes(routes []string, size int) [][]string {
	if len(routes) == 0 {
		return [][]string{nil}
	}
	if size <= 0 || size > 15 {
		size = 15
	}
	var out [][]string
	for i := 0; i < len(routes); i += size {
		end := i + size
		if end > len(routes) {
			end = len(routes)
		}
		out = append(out, routes[i:end])
	}
	return out
}

// dedupe keeps the first occurrence of each (fr24_id, timestamp) pair.
func dedupe(in []Position) []Position {
	seen := make(map[posKey]struct{}, len(in))
	out := in[:0]
	for _, p := range in {
		k := posKey{id: p.FR24ID, ts: p.Timestamp}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
