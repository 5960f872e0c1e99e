package aemet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/couchcryptid/event-weather-risk-service/internal/observability"
	"github.com/sony/gobreaker"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://opendata.aemet.es/opendata/api"
	hourlyPath     = "/prediccion/especifica/municipio/horaria/"

	// maxBodyBytes bounds a single response body.
	maxBodyBytes = 4 << 20
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
	errNoData      = errors.New("no forecast data")
)

// Backoff controls the exponential delay between retries.
type Backoff struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Options configures a Client.
type Options struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	RateBurst int
	Backoff   Backoff
}

// Client fetches hourly municipality forecasts from AEMET OpenData.
// A forecast needs two requests: the first returns a short-lived data URL,
// the second returns the payload itself.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	backoff    Backoff
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an AEMET forecast client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if opts.Backoff.InitialInterval <= 0 {
		opts.Backoff.InitialInterval = 250 * time.Millisecond
	}
	if opts.Backoff.MaxInterval <= 0 {
		opts.Backoff.MaxInterval = 2 * time.Second
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "aemet",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		limiter: rate.NewLimiter(limit, burst),
		backoff: opts.Backoff,
		metrics: metrics,
		logger:  logger,
	}
}

// Forecast returns the hourly forecast days for an AEMET municipality code.
func (c *Client) Forecast(ctx context.Context, locationCode string) ([]domain.ForecastDay, error) {
	start := time.Now()
	days, err := c.fetch(ctx, locationCode)
	c.metrics.ForecastAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.ForecastRequests.WithLabelValues("success").Inc()
	c.logger.Debug("forecast fetched", "location_code", locationCode, "days", len(days))
	return days, nil
}

func (c *Client) fetch(ctx context.Context, locationCode string) ([]domain.ForecastDay, error) {
	params := url.Values{"api_key": {c.apiKey}}
	metaURL := c.baseURL + hourlyPath + url.PathEscape(locationCode) + "?" + params.Encode()

	body, err := c.get(ctx, metaURL)
	if err != nil {
		return nil, fmt.Errorf("forecast metadata: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode forecast metadata: %w", err)
	}
	if meta.DataURL == "" {
		return nil, fmt.Errorf("%w for %s: estado %d: %s", errNoData, locationCode, meta.Status, meta.Description)
	}

	body, err = c.get(ctx, meta.DataURL)
	if err != nil {
		return nil, fmt.Errorf("forecast data: %w", err)
	}
	return DecodeForecast(body)
}

// get performs a rate-limited GET with retries and exponential backoff
// behind the circuit breaker, returning the body decoded to UTF-8.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var attempt int
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", err)
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.do(ctx, rawURL)
		})
		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, errors.New("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if !retryable(err) || attempt >= c.backoff.MaxRetries {
			return nil, err
		}

		delay := c.backoff.InitialInterval << attempt
		if delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}
		c.logger.Debug("retrying forecast request", "attempt", attempt+1, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the request URL, which holds the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("aemet request: %w", uerr.Err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("aemet API error: %w: %d: %s", errUnexpected, resp.StatusCode, body)
	}

	var r io.Reader = io.LimitReader(resp.Body, maxBodyBytes)
	if !isUTF8(resp.Header.Get("Content-Type")) {
		r = charmap.ISO8859_15.NewDecoder().Reader(r)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// isUTF8 reports whether the content type declares UTF-8. AEMET serves
// ISO-8859-15 and does not always say so.
func isUTF8(contentType string) bool {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.EqualFold(params["charset"], "utf-8")
}

func retryable(err error) bool {
	if errors.Is(err, errUnexpected) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
