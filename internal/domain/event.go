package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Event is a scheduled outdoor event as stored in the event catalog.
// StartHour and EndHour are "HH" or "HH:MM" strings.
type Event struct {
	ID        int
	Name      string
	Location  string
	Date      string
	StartHour string
	EndHour   string
}

// User is a participant assigned to an event.
type User struct {
	ID          int64
	DisplayName string
}

// HourRange parses the start and end hours. Only the leading two digits of
// each field are read.
func (e Event) HourRange() (int, int, error) {
	start, err := parseHour(e.StartHour)
	if err != nil {
		return 0, 0, fmt.Errorf("start hour: %w", err)
	}
	end, err := parseHour(e.EndHour)
	if err != nil {
		return 0, 0, fmt.Errorf("end hour: %w", err)
	}
	return start, end, nil
}

func parseHour(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHour, s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHour, s)
	}
	return h, nil
}
