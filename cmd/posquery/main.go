// posquery sweeps the historical flight-position API over a time range and
// set of routes, writing the collected records as JSON and/or CSV. Routes
// come from flags or a line-based list file ("JFK-LAX" per line).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"flightetl/internal/cli"
	"flightetl/internal/config"
	"flightetl/internal/datasource/file"
	"flightetl/internal/fr24"
	"flightetl/internal/pipeline"
)

func main() {
	var (
		token       string
		startStr    string
		endStr      string
		interval    time.Duration
		routes      string
		routesFile  string
		batchSize   int
		bounds      string
		operatingAs string
		paintedAs   string
		limit       int
		outJSON     string
		outCSV      string
		dedupe      bool

		validateOnly   bool
		metricsBackend string
		pushURL        string
		statsdAddr     string
	)

	flag.StringVar(&token, "token", "", "API token (or FR24_API_TOKEN)")
	flag.StringVar(&startStr, "start", "", "sweep start, RFC 3339 (e.g. 2024-01-01T12:00:00Z)")
	flag.StringVar(&endStr, "end", "", "sweep end, RFC 3339")
	flag.DurationVar(&interval, "interval", 15*time.Minute, "sampling interval")
	flag.StringVar(&routes, "routes", "", "comma-separated ORIG-DEST routes")
	flag.StringVar(&routesFile, "routes-file", "", "route list file, one ORIG-DEST per line")
	flag.IntVar(&batchSize, "batch-size", 15, "routes per API request (max 15)")
	flag.StringVar(&bounds, "bounds", "", "lat/lon box north,south,west,east")
	flag.StringVar(&operatingAs, "operating-as", "", "operating carrier ICAO filter")
	flag.StringVar(&paintedAs, "painted-as", "", "livery carrier ICAO filter")
	flag.IntVar(&limit, "limit", 0, "max records per response (0 = API default)")
	flag.StringVar(&outJSON, "out-json", "", "output JSON path")
	flag.StringVar(&outCSV, "out-csv", "", "output CSV path")
	flag.BoolVar(&dedupe, "dedupe", true, "drop repeated (fr24_id, timestamp) records")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend (pushgateway, datadog, none)")
	flag.StringVar(&pushURL, "pushgateway-url", "", "Pushgateway base URL")
	flag.StringVar(&statsdAddr, "statsd-addr", "", "Datadog statsd address")
	flag.Parse()

	if token == "" {
		token = os.Getenv("FR24_API_TOKEN")
	}

	routeList := cli.SplitList(routes)
	if routesFile != "" {
		fromFile, err := file.ReadList(routesFile)
		if err != nil {
			cli.Fatalf("routes-file: %v", err)
		}
		routeList = append(routeList, fromFile...)
	}

	cfg := config.Positions{
		Token:       token,
		Interval:    interval,
		Routes:      routeList,
		BatchSize:   batchSize,
		Bounds:      bounds,
		OperatingAs: operatingAs,
		PaintedAs:   paintedAs,
		Limit:       limit,
		OutJSON:     outJSON,
		OutCSV:      outCSV,
		Dedupe:      dedupe,
	}
	var err error
	if cfg.Start, err = parseWhen(startStr); err != nil {
		cli.Fatalf("start: %v", err)
	}
	if cfg.End, err = parseWhen(endStr); err != nil {
		cli.Fatalf("end: %v", err)
	}

	if validateOnly {
		issues := cfg.Validate()
		for _, i := range issues {
			fmt.Fprintln(os.Stderr, i)
		}
		if config.HasError(issues) {
			os.Exit(1)
		}
		fmt.Println("configuration is valid")
		return
	}

	flush := cli.SetupMetrics("posquery", metricsBackend, pushURL, statsdAddr)
	defer flush()

	client := fr24.NewClient(cfg.Token)
	if _, err := pipeline.RunPositions(context.Background(), cfg, client); err != nil {
		cli.Fatalf("posquery: %v", err)
	}
}

func parseWhen(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
