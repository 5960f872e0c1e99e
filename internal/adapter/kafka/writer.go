package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/event-weather-risk-service/internal/config"
	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces built event reports to the report topic.
// It implements report.Publisher.
type Publisher struct {
	writer messageWriter
	clock  clockwork.Clock
	newID  func() string
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{
		writer: w,
		clock:  clock,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Publish writes one report, keyed by event id so reports for the same
// event land on the same partition.
func (p *Publisher) Publish(ctx context.Context, report domain.EventReport) error {
	msg, err := serializeToMessage(report, p.newID(), p.clock.Now())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write report %d: %w", report.EventID, err)
	}
	p.logger.Debug("report published", "event_id", report.EventID, "hours", len(report.Hours))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an EventReport into a Kafka message.
func serializeToMessage(report domain.EventReport, id string, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(report.EventID)),
		Value: data,
		Time:  generatedAt,
		Headers: []kafkago.Header{
			{Key: "report_id", Value: []byte(id)},
			{Key: "event_id", Value: []byte(strconv.Itoa(report.EventID))},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
