package pipeline

import (
	"context"
	"log"

	"flightetl/internal/config"
	"flightetl/internal/loader"
	"flightetl/internal/metrics"
	"flightetl/internal/table"
	"flightetl/internal/weather"
	"flightetl/internal/writer"
)

// RunWeather executes the weather-attachment pipeline: index the
// observation file by (station, quarter hour), then attach departure and
// arrival weather to every flight row.
func RunWeather(ctx context.Context, cfg config.Weather) (*Summary, error) {
	const name = "weather"

	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	var obs, flights *table.Table
	sum := &Summary{}
	if err := stage(name, "load", func() error {
		res, err := loader.LoadFile(cfg.Obs, loader.Options{})
		if err != nil {
			return err
		}
		obs = res.Table
		sum.Skipped += res.Skipped

		res, err = loader.LoadFile(cfg.Flights, loader.Options{})
		if err != nil {
			return err
		}
		flights = res.Table
		sum.Skipped += res.Skipped
		return nil
	}); err != nil {
		return nil, err
	}
	sum.RowsIn = len(flights.Rows)

	var out *table.Table
	if err := stage(name, "attach", func() error {
		m, err := weather.BuildMap(obs)
		if err != nil {
			return err
		}
		log.Printf("weather: indexed %d observation buckets with columns %v", m.Len(), m.Columns)

		var res weather.AttachResult
		out, res, err = weather.Attach(flights, m)
		if err != nil {
			return err
		}
		sum.Unmatched = res.Rows*2 - res.DepMatched - res.ArrMatched
		return nil
	}); err != nil {
		return nil, err
	}

	if err := stage(name, "write", func() error {
		return writer.WriteCSV(cfg.Out, out)
	}); err != nil {
		return nil, err
	}
	sum.RowsOut = len(out.Rows)

	metrics.RecordRows(name, "in", int64(sum.RowsIn))
	metrics.RecordRows(name, "out", int64(sum.RowsOut))
	metrics.RecordRows(name, "skipped", int64(sum.Skipped))
	metrics.RecordRows(name, "unmatched", int64(sum.Unmatched))
	log.Printf("weather: %s", sum)
	return sum, nil
}
