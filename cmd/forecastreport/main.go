// Command forecastreport builds an event weather-risk report offline from a
// saved AEMET hourly forecast payload and a measures catalog file. It is used
// to check a measure catalog against a forecast without the database or the
// AEMET API.
//
// Usage:
//
//	go run ./cmd/forecastreport \
//	  -forecast internal/adapter/aemet/testdata/horaria_08019.json \
//	  -measures measures.json \
//	  -date 2025-06-01 -start 20 -end 23 \
//	  -participants anna,pau
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/event-weather-risk-service/internal/adapter/aemet"
	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/couchcryptid/event-weather-risk-service/internal/report"
)

const offlineEventID = 1

type options struct {
	forecastPath string
	measuresPath string
	location     string
	date         string
	start        string
	end          string
	participants string
}

func main() {
	var opts options
	flag.StringVar(&opts.forecastPath, "forecast", "", "path to a saved AEMET hourly forecast payload")
	flag.StringVar(&opts.measuresPath, "measures", "", "path to a JSON array of measures (optional)")
	flag.StringVar(&opts.location, "location", "offline", "location name shown in errors")
	flag.StringVar(&opts.date, "date", "", "event date, YYYY-MM-DD")
	flag.StringVar(&opts.start, "start", "", "event start hour, HH or HH:MM")
	flag.StringVar(&opts.end, "end", "", "event end hour, HH or HH:MM")
	flag.StringVar(&opts.participants, "participants", "", "comma-separated participant names")
	flag.Parse()

	if opts.forecastPath == "" || opts.date == "" || opts.start == "" || opts.end == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "forecastreport:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	data, err := os.ReadFile(opts.forecastPath)
	if err != nil {
		return fmt.Errorf("read forecast: %w", err)
	}
	days, err := aemet.DecodeForecast(data)
	if err != nil {
		return err
	}

	var measures []domain.Measure
	if opts.measuresPath != "" {
		raw, err := os.ReadFile(opts.measuresPath)
		if err != nil {
			return fmt.Errorf("read measures: %w", err)
		}
		if err := json.Unmarshal(raw, &measures); err != nil {
			return fmt.Errorf("parse measures: %w", err)
		}
	}

	catalog := &fileCatalog{
		event: domain.Event{
			ID:        offlineEventID,
			Name:      "offline",
			Location:  opts.location,
			Date:      opts.date,
			StartHour: opts.start,
			EndHour:   opts.end,
		},
		measures: measures,
		users:    parseParticipants(opts.participants),
	}

	a := report.NewAssembler(catalog, catalog, staticForecast(days))
	r, err := a.Build(ctx, offlineEventID)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, encoded, "", "  "); err != nil {
		return fmt.Errorf("indent report: %w", err)
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(out)
	return err
}

func parseParticipants(s string) []domain.User {
	var users []domain.User
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			users = append(users, domain.User{ID: int64(len(users) + 1), DisplayName: name})
		}
	}
	return users
}

// fileCatalog serves a single event described on the command line.
type fileCatalog struct {
	event    domain.Event
	measures []domain.Measure
	users    []domain.User
}

func (c *fileCatalog) Event(_ context.Context, id int) (domain.Event, error) {
	if id != c.event.ID {
		return domain.Event{}, fmt.Errorf("%w: %d", domain.ErrEventNotFound, id)
	}
	return c.event, nil
}

func (c *fileCatalog) AssignedMeasures(_ context.Context, _ int) ([]domain.Measure, error) {
	return c.measures, nil
}

func (c *fileCatalog) AssignedUsers(_ context.Context, _ int) ([]domain.User, error) {
	return c.users, nil
}

// CodeForLocation resolves every name; the forecast file already fixes the
// location.
func (c *fileCatalog) CodeForLocation(_ context.Context, name string) (string, error) {
	return name, nil
}

type staticForecast []domain.ForecastDay

func (f staticForecast) Forecast(_ context.Context, _ string) ([]domain.ForecastDay, error) {
	return f, nil
}
