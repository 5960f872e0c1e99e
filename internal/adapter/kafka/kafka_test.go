package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func testPublisher(w messageWriter, clock clockwork.Clock) *Publisher {
	return &Publisher{
		writer: w,
		clock:  clock,
		newID:  func() string { return "5b0c8a4e-0d7e-4d43-9a57-3c55b0f4c6a1" },
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func sampleReport() domain.EventReport {
	v := 62.0
	return domain.EventReport{
		EventID:      42,
		Participants: []string{"anna"},
		Hours: []domain.HourReport{
			{Timestamp: "2025-06-01T20", RelativeHumidity: &v},
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)

	msg, err := serializeToMessage(sampleReport(), "report-1", now)
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	assert.JSONEq(t, `{"participants":["anna"],"2025-06-01T20":{"relative_humidity":62}}`, string(msg.Value))
	assert.Equal(t, now, msg.Time)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "report_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("report-1"), msg.Headers[0].Value)
	assert.Equal(t, "event_id", msg.Headers[1].Key)
	assert.Equal(t, []byte("42"), msg.Headers[1].Value)
	assert.Equal(t, "generated_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2025-06-01T18:30:00Z"), msg.Headers[2].Value)
}

func TestPublisher_Publish(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC))
	w := &recordingWriter{}
	p := testPublisher(w, clock)

	require.NoError(t, p.Publish(context.Background(), sampleReport()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("42"), w.msgs[0].Key)
	assert.Equal(t, clock.Now(), w.msgs[0].Time)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := testPublisher(w, clockwork.NewFakeClock())

	err := p.Publish(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write report 42")
	assert.Contains(t, err.Error(), "leader not available")
}
