package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_HourRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantStart  int
		wantEnd    int
	}{
		{"plain hours", "20", "23", 20, 23},
		{"clock times", "08:30", "14:00", 8, 14},
		{"midnight", "00", "03", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := Event{StartHour: tt.start, EndHour: tt.end}.HourRange()
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestEvent_HourRangeInvalid(t *testing.T) {
	for _, bad := range []string{"", "7", "ab", "24", "-1"} {
		_, _, err := Event{StartHour: bad, EndHour: "10"}.HourRange()
		require.ErrorIs(t, err, ErrInvalidHour, "start %q", bad)
		assert.Contains(t, err.Error(), "start hour")
	}

	_, _, err := Event{StartHour: "10", EndHour: "99"}.HourRange()
	require.ErrorIs(t, err, ErrInvalidHour)
	assert.Contains(t, err.Error(), "end hour")
}
