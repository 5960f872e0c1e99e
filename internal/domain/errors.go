package domain

import "errors"

// Report stage failures. Each one terminates report building; callers match
// them with errors.Is.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrLocationNotFound    = errors.New("location not found")
	ErrForecastUnavailable = errors.New("forecast unavailable")
	ErrDateNotInForecast   = errors.New("event date not in forecast")

	// ErrInvalidHour marks an event hour outside 0..23 or not parseable.
	ErrInvalidHour = errors.New("invalid hour")
)
