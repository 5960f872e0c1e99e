package domain

import "fmt"

// Quarter is one of the four six-hour forecast buckets used by probability
// series.
type Quarter string

const (
	QuarterNight   Quarter = "0107"
	QuarterMorning Quarter = "0713"
	QuarterMidday  Quarter = "1319"
	QuarterEvening Quarter = "1901"
)

// Period holds the two markers used to look up forecast values for one hour.
type Period struct {
	Hour    string
	Quarter Quarter
}

// HourMarker formats h as a two-digit hour marker, e.g. 7 -> "07".
func HourMarker(h int) string {
	return fmt.Sprintf("%02d", h)
}

// QuarterFor returns the quarter assessed for hour h. Night wraps around
// midnight.
func QuarterFor(h int) Quarter {
	switch {
	case h >= 22 || h < 4:
		return QuarterNight
	case h < 10:
		return QuarterMorning
	case h < 16:
		return QuarterMidday
	default:
		return QuarterEvening
	}
}

// ResolvePeriod returns both markers for hour h, which must be in 0..23.
func ResolvePeriod(h int) (Period, error) {
	if h < 0 || h > 23 {
		return Period{}, fmt.Errorf("%w: %d", ErrInvalidHour, h)
	}
	return Period{Hour: HourMarker(h), Quarter: QuarterFor(h)}, nil
}
