// attachweather joins surface observations onto enriched flight rows by
// airport and nearest quarter hour, adding DEP_- and ARR_-prefixed weather
// columns.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"flightetl/internal/cli"
	"flightetl/internal/config"
	"flightetl/internal/pipeline"
)

func main() {
	var (
		flights string
		obs     string
		out     string

		validateOnly   bool
		metricsBackend string
		pushURL        string
		statsdAddr     string
	)

	flag.StringVar(&flights, "flights", "inputs/aa_flight_test_enriched_hubs.csv", "flight rows CSV")
	flag.StringVar(&obs, "weather", "inputs/All_Hubs_Weather.csv", "weather observations CSV (station, valid, ...)")
	flag.StringVar(&out, "out", "outputs/aa_flight_test_enriched_hubs_weather.csv", "output CSV path")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend (pushgateway, datadog, none)")
	flag.StringVar(&pushURL, "pushgateway-url", "", "Pushgateway base URL")
	flag.StringVar(&statsdAddr, "statsd-addr", "", "Datadog statsd address")
	flag.Parse()

	cfg := config.Weather{Flights: flights, Obs: obs, Out: out}

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

	flush := cli.SetupMetrics("attachweather", metricsBackend, pushURL, statsdAddr)
	defer flush()

	if _, err := pipeline.RunWeather(context.Background(), cfg); err != nil {
		cli.Fatalf("attachweather: %v", err)
	}
}
