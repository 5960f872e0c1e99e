package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
)

// EventStore reads events and their assignments. Event returns an error
// wrapping domain.ErrEventNotFound when the id is unknown.
type EventStore interface {
	Event(ctx context.Context, id int) (domain.Event, error)
	AssignedMeasures(ctx context.Context, eventID int) ([]domain.Measure, error)
	AssignedUsers(ctx context.Context, eventID int) ([]domain.User, error)
}

// LocationResolver maps a location name to a forecast location code. It
// returns an error wrapping domain.ErrLocationNotFound when unresolved.
type LocationResolver interface {
	CodeForLocation(ctx context.Context, name string) (string, error)
}

// ForecastProvider fetches the multi-day forecast for a location code.
type ForecastProvider interface {
	Forecast(ctx context.Context, locationCode string) ([]domain.ForecastDay, error)
}

// Assembler builds event reports. It holds no per-request state and is safe
// for concurrent use.
type Assembler struct {
	events    EventStore
	locations LocationResolver
	forecasts ForecastProvider
}

// NewAssembler creates an Assembler over the given collaborators.
func NewAssembler(events EventStore, locations LocationResolver, forecasts ForecastProvider) *Assembler {
	return &Assembler{
		events:    events,
		locations: locations,
		forecasts: forecasts,
	}
}

// Build produces the weather-risk report for an event. Stages run in order
// and the first failure is returned; no partial report is produced.
func (a *Assembler) Build(ctx context.Context, eventID int) (domain.EventReport, error) {
	event, err := a.events.Event(ctx, eventID)
	if err != nil {
		return domain.EventReport{}, fmt.Errorf("load event %d: %w", eventID, err)
	}
	start, end, err := event.HourRange()
	if err != nil {
		return domain.EventReport{}, fmt.Errorf("event %d: %w", eventID, err)
	}

	code, err := a.locations.CodeForLocation(ctx, event.Location)
	if err != nil {
		return domain.EventReport{}, fmt.Errorf("resolve location %q: %w", event.Location, err)
	}

	days, err := a.forecasts.Forecast(ctx, code)
	if err != nil {
		return domain.EventReport{}, forecastError(code, err)
	}

	day, ok := matchDay(days, event.Date)
	if !ok {
		return domain.EventReport{}, fmt.Errorf("%w: %q", domain.ErrDateNotInForecast, event.Date)
	}

	users, err := a.events.AssignedUsers(ctx, eventID)
	if err != nil {
		return domain.EventReport{}, fmt.Errorf("load participants of event %d: %w", eventID, err)
	}
	measures, err := a.events.AssignedMeasures(ctx, eventID)
	if err != nil {
		return domain.EventReport{}, fmt.Errorf("load measures of event %d: %w", eventID, err)
	}

	date, ok := day.CalendarDate()
	if !ok {
		date = event.Date
	}

	report := domain.EventReport{
		EventID:      eventID,
		Participants: participantNames(users),
	}
	for h := start; h <= end; h++ {
		period, err := domain.ResolvePeriod(h)
		if err != nil {
			return domain.EventReport{}, err
		}
		report.Hours = append(report.Hours, assembleHour(day, date, period, measures))
	}
	return report, nil
}

// forecastError tags any provider failure as domain.ErrForecastUnavailable.
func forecastError(code string, err error) error {
	if errors.Is(err, domain.ErrForecastUnavailable) {
		return fmt.Errorf("location code %s: %w", code, err)
	}
	return fmt.Errorf("%w: location code %s: %w", domain.ErrForecastUnavailable, code, err)
}

// matchDay returns the first day whose date contains the event date.
func matchDay(days []domain.ForecastDay, eventDate string) (domain.ForecastDay, bool) {
	for _, d := range days {
		if strings.Contains(d.Date, eventDate) {
			return d, true
		}
	}
	return domain.ForecastDay{}, false
}

func participantNames(users []domain.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.DisplayName)
	}
	return names
}
