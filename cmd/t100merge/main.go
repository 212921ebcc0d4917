// t100merge merges yearly T-100 carrier-summary extracts into one CSV,
// with optional AA hub filtering, minimal projection, keyed dedup, and
// aircraft-type enrichment.
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

	// register the database sink backends with the storage factory.
	_ "flightetl/internal/storage/all"
)

func main() {
	var (
		inputs        multiFlag
		out           string
		filterAA      bool
		airports      string
		projectMin    bool
		dedupe        string
		aircraftTypes string
		latin1        bool

		storageKind  string
		storageDSN   string
		storageTable string

		configPath     string
		validateOnly   bool
		metricsBackend string
		pushURL        string
		statsdAddr     string
	)

	flag.Var(&inputs, "inputs", "input CSV path (repeatable)")
	flag.StringVar(&out, "out", "outputs/US_CARRIER_SUMMARY_MERGED.csv", "output CSV path")
	flag.BoolVar(&filterAA, "filter-aa", false, "keep only AA flights between the hub airports")
	flag.StringVar(&airports, "airports", strings.Join(config.DefaultAirports, ","), "comma-separated hub airports for -filter-aa")
	flag.BoolVar(&projectMin, "project-minimal", false, "reduce output to UNIQUE_CARRIER, ORIGIN, DEST, YEAR, MONTH (plus AIRCRAFT_TYPE)")
	flag.StringVar(&dedupe, "dedupe", "", "comma-separated dedupe key columns (keep first occurrence)")
	flag.StringVar(&aircraftTypes, "aircraft-types", "", "aircraft-type reference CSV for DESCRIPTION lookup")
	flag.BoolVar(&latin1, "latin1", false, "decode inputs as ISO 8859-1")
	flag.StringVar(&storageKind, "storage", "", "database sink kind (sqlite, postgres); empty writes CSV only")
	flag.StringVar(&storageDSN, "storage-dsn", "", "database sink DSN")
	flag.StringVar(&storageTable, "storage-table", "", "database sink table name")
	flag.StringVar(&configPath, "config", "", "JSON config path; flags are ignored when set")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend (pushgateway, datadog, none)")
	flag.StringVar(&pushURL, "pushgateway-url", "", "Pushgateway base URL")
	flag.StringVar(&statsdAddr, "statsd-addr", "", "Datadog statsd address")
	flag.Parse()

	cfg := config.Merge{
		Inputs:         inputs,
		Out:            out,
		FilterAA:       filterAA,
		Airports:       cli.SplitList(airports),
		ProjectMinimal: projectMin,
		DedupeKeys:     cli.SplitList(dedupe),
		AircraftTypes:  aircraftTypes,
		Latin1:         latin1,
		Storage:        config.Storage{Kind: storageKind, DSN: storageDSN, Table: storageTable},
	}
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			cli.Fatalf("open config: %v", err)
		}
		cfg = config.Merge{}
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

	flush := cli.SetupMetrics("t100merge", metricsBackend, pushURL, statsdAddr)
	defer flush()

	if _, err := pipeline.RunMerge(context.Background(), cfg); err != nil {
		cli.Fatalf("merge: %v", err)
	}
}

// multiFlag collects a repeatable string flag, preserving order.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
