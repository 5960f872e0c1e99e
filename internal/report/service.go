package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/couchcryptid/event-weather-risk-service/internal/observability"
)

// Builder produces event reports.
type Builder interface {
	Build(ctx context.Context, eventID int) (domain.EventReport, error)
}

// Publisher forwards built reports downstream.
type Publisher interface {
	Publish(ctx context.Context, report domain.EventReport) error
}

// ReadinessChecker reports whether a dependency can serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Service wraps a Builder with logging, metrics and optional publishing.
type Service struct {
	builder   Builder
	publisher Publisher
	checks    []ReadinessChecker
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService creates a Service. publisher may be nil. checks are the
// dependencies consulted by CheckReadiness.
func NewService(b Builder, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, checks ...ReadinessChecker) *Service {
	return &Service{
		builder:   b,
		publisher: publisher,
		checks:    checks,
		logger:    logger,
		metrics:   metrics,
	}
}

// Generate builds the report for eventID and publishes it when a publisher
// is configured. Publish failures are logged, never returned.
func (s *Service) Generate(ctx context.Context, eventID int) (domain.EventReport, error) {
	start := time.Now()
	report, err := s.builder.Build(ctx, eventID)
	outcome := Outcome(err)
	s.metrics.ReportsTotal.WithLabelValues(outcome).Inc()

	if err != nil {
		if outcome == OutcomeError {
			s.logger.Error("report build failed", "event_id", eventID, "error", err)
		} else {
			s.logger.Warn("report not built", "event_id", eventID, "outcome", outcome, "error", err)
		}
		return domain.EventReport{}, err
	}
	s.metrics.ReportDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("report built", "event_id", eventID, "hours", len(report.Hours))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, report); err != nil {
			s.logger.Warn("report publish failed", "event_id", eventID, "error", err)
		} else {
			s.metrics.ReportsPublished.Inc()
		}
	}
	return report, nil
}

// CheckReadiness returns the first failing dependency check.
func (s *Service) CheckReadiness(ctx context.Context) error {
	for _, c := range s.checks {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Report outcomes, used as metric labels.
const (
	OutcomeBuilt               = "built"
	OutcomeEventNotFound       = "event_not_found"
	OutcomeLocationNotFound    = "location_not_found"
	OutcomeForecastUnavailable = "forecast_unavailable"
	OutcomeDateNotInForecast   = "date_not_in_forecast"
	OutcomeInvalidHour         = "invalid_hour"
	OutcomeError               = "error"
)

// Outcome names the stage that err came from.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeBuilt
	case errors.Is(err, domain.ErrEventNotFound):
		return OutcomeEventNotFound
	case errors.Is(err, domain.ErrLocationNotFound):
		return OutcomeLocationNotFound
	case errors.Is(err, domain.ErrForecastUnavailable):
		return OutcomeForecastUnavailable
	case errors.Is(err, domain.ErrDateNotInForecast):
		return OutcomeDateNotInForecast
	case errors.Is(err, domain.ErrInvalidHour):
		return OutcomeInvalidHour
	default:
		return OutcomeError
	}
}
