package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/event-weather-risk-service/internal/adapter/http"
	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockGenerator struct {
	report domain.EventReport
	err    error
	ids    []int
}

func (m *mockGenerator) Generate(_ context.Context, eventID int) (domain.EventReport, error) {
	m.ids = append(m.ids, eventID)
	if m.err != nil {
		return domain.EventReport{}, m.err
	}
	r := m.report
	r.EventID = eventID
	return r, nil
}

type mockLocations map[string]string

func (m mockLocations) CodeForLocation(_ context.Context, name string) (string, error) {
	if code, ok := m[name]; ok {
		return code, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrLocationNotFound, name)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(gen *mockGenerator, readyErr error) *httpadapter.Server {
	locations := mockLocations{"Barcelona": "08019", "La Seu d'Urgell": "25203"}
	return httpadapter.NewServer(":0", gen, locations, &mockReadiness{err: readyErr}, discardLogger())
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockGenerator{}, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&mockGenerator{}, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(&mockGenerator{}, errors.New("database unreachable")), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockGenerator{}, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestEventWeather_ReturnsReport(t *testing.T) {
	humidity := 62.0
	gen := &mockGenerator{report: domain.EventReport{
		Participants: []string{"anna", "pau"},
		Hours:        []domain.HourReport{{Timestamp: "2025-06-01T20", RelativeHumidity: &humidity}},
	}}

	rec := get(t, newTestServer(gen, nil), "/api/events/42/weather")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"participants":["anna","pau"],"2025-06-01T20":{"relative_humidity":62}}`, rec.Body.String())
	assert.Equal(t, []int{42}, gen.ids)
}

func TestEventWeather_InvalidID(t *testing.T) {
	for _, path := range []string{"/api/events/abc/weather", "/api/events/0/weather", "/api/events/-3/weather"} {
		gen := &mockGenerator{}
		rec := get(t, newTestServer(gen, nil), path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Empty(t, gen.ids, path)
	}
}

func TestEventWeather_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"event not found", fmt.Errorf("load event 42: %w", domain.ErrEventNotFound), http.StatusNotFound},
		{"location not found", fmt.Errorf("resolve location: %w", domain.ErrLocationNotFound), http.StatusNotFound},
		{"date not in forecast", fmt.Errorf("%w: 2025-07-15", domain.ErrDateNotInForecast), http.StatusNotFound},
		{"forecast unavailable", fmt.Errorf("%w: circuit breaker open", domain.ErrForecastUnavailable), http.StatusBadGateway},
		{"invalid hour", fmt.Errorf("start hour: %w", domain.ErrInvalidHour), http.StatusUnprocessableEntity},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"deadline during forecast fetch", fmt.Errorf("%w: location code 08019: %w", domain.ErrForecastUnavailable, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unexpected", errors.New("query measures: conn reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(&mockGenerator{err: tt.err}, nil), "/api/events/42/weather")
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestEventWeather_InternalErrorHidesDetail(t *testing.T) {
	rec := get(t, newTestServer(&mockGenerator{err: errors.New("password authentication failed")}, nil), "/api/events/42/weather")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLocation_Found(t *testing.T) {
	rec := get(t, newTestServer(&mockGenerator{}, nil), "/api/locations/Barcelona")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Barcelona","code":"08019"}`, rec.Body.String())
}

func TestLocation_EscapedName(t *testing.T) {
	rec := get(t, newTestServer(&mockGenerator{}, nil), "/api/locations/La%20Seu%20d%27Urgell")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"La Seu d'Urgell","code":"25203"}`, rec.Body.String())
}

func TestLocation_NotFound(t *testing.T) {
	rec := get(t, newTestServer(&mockGenerator{}, nil), "/api/locations/Atlantis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, httpadapter.StatusFor(domain.ErrEventNotFound))
	assert.Equal(t, http.StatusBadGateway, httpadapter.StatusFor(domain.ErrForecastUnavailable))
	assert.Equal(t, http.StatusInternalServerError, httpadapter.StatusFor(errors.New("boom")))
}
