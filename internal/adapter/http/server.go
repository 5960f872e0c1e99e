package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// requestTimeout bounds a report request. It covers both AEMET request steps
// with their retries.
const requestTimeout = 40 * time.Second

// ReportGenerator builds the weather-risk report for an event.
type ReportGenerator interface {
	Generate(ctx context.Context, eventID int) (domain.EventReport, error)
}

// LocationResolver maps a location name to its AEMET municipality code.
type LocationResolver interface {
	CodeForLocation(ctx context.Context, name string) (string, error)
}

// Server exposes the report API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	reports    ReportGenerator
	locations  LocationResolver
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes, /healthz, /readyz,
// and /metrics.
func NewServer(addr string, reports ReportGenerator, locations LocationResolver, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: requestTimeout + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reports:   reports,
		locations: locations,
		logger:    logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/events/{id}/weather", s.handleEventWeather)
		r.Get("/locations/{name}", s.handleLocation)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleEventWeather(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "event id must be a positive integer")
		return
	}

	report, err := s.reports.Generate(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	code, err := s.locations.CodeForLocation(r.Context(), name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "code": code})
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// StatusFor maps a report or lookup error to an HTTP status code. An expired
// deadline wins over the stage the error was tagged with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrLocationNotFound),
		errors.Is(err, domain.ErrDateNotInForecast):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForecastUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidHour):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may be gone
}
