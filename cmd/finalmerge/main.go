// finalmerge enriches the flight-level test extract with aircraft type and
// description from the merged T-100 summary, joined on ORIGIN, DEST, YEAR,
// MONTH.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"flightetl/internal/cli"
	"flightetl/internal/config"
	"flightetl/internal/pipeline"

	_ "flightetl/internal/storage/all"
)

func main() {
	var (
		aaTest        string
		merged        string
		out           string
		aircraftTypes string
		filterHubs    bool
		hubs          string

		storageKind  string
		storageDSN   string
		storageTable string

		configPath     string
		validateOnly   bool
		metricsBackend string
		pushURL        string
		statsdAddr     string
	)

	flag.StringVar(&aaTest, "aa_test", "inputs/aa_flight_test.csv", "flight-level test extract CSV")
	flag.StringVar(&merged, "merged", "outputs/US_AA_10airports.csv", "merged T-100 summary CSV")
	flag.StringVar(&out, "out", "outputs/aa_flight_test_enriched.csv", "output CSV path")
	flag.StringVar(&aircraftTypes, "aircraft-types", "", "aircraft-type reference CSV for code backfill from descriptions")
	flag.BoolVar(&filterHubs, "filter-hubs", false, "keep only flights between the hub airports")
	flag.StringVar(&hubs, "hubs", strings.Join(config.DefaultAirports, ","), "comma-separated hub airports for -filter-hubs")
	flag.StringVar(&storageKind, "storage", "", "database sink kind (sqlite, postgres); empty writes CSV only")
	flag.StringVar(&storageDSN, "storage-dsn", "", "database sink DSN")
	flag.StringVar(&storageTable, "storage-table", "", "database sink table name")
	flag.StringVar(&configPath, "config", "", "JSON config path; flags are ignored when set")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend (pushgateway, datadog, none)")
	flag.StringVar(&pushURL, "pushgateway-url", "", "Pushgateway base URL")
	flag.StringVar(&statsdAddr, "statsd-addr", "", "Datadog statsd address")
	flag.Parse()

	cfg := config.FinalMerge{
		AATest:        aaTest,
		Merged:        merged,
		Out:           out,
		AircraftTypes: aircraftTypes,
		FilterHubs:    filterHubs,
		Hubs:          cli.SplitList(hubs),
		Storage:       config.Storage{Kind: storageKind, DSN: storageDSN, Table: storageTable},
	}
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			cli.Fatalf("open config: %v", err)
		}
		cfg = config.FinalMerge{}
		err = config.DecodeStrict(f, &cfg)
		f.Close()
		if err != nil {
			cli.Fatalf("config %s: %v", configPath, err)
		}
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

	flush := cli.SetupMetrics("finalmerge", metricsBackend, pushURL, statsdAddr)
	defer flush()

	if _, err := pipeline.RunFinalMerge(context.Background(), cfg); err != nil {
		cli.Fatalf("finalmerge: %v", err)
	}
}
