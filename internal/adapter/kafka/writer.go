package kafka

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-fusion-service/internal/config"
	"github.com/couchcryptid/weather-fusion-service/internal/domain"
)

// Writer produces messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes multiple serialized reports to the sink topic in a
// single WriteMessages call. Reports are keyed by location, and the hash
// balancer keeps each location on one partition so rules and enhanced
// reports stay in order.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msgs[i] = serializeToMessage(events[i])
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

// Publish writes a single report, used for enhanced advisories.
func (w *Writer) Publish(ctx context.Context, event domain.OutputEvent) error {
	return w.LoadBatch(ctx, []domain.OutputEvent{event})
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage converts an OutputEvent into a Kafka message. Headers
// are emitted in key order.
func serializeToMessage(event domain.OutputEvent) kafkago.Message {
	headers := make([]kafkago.Header, 0, len(event.Headers))
	for _, k := range slices.Sorted(maps.Keys(event.Headers)) {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(event.Headers[k])})
	}
	return kafkago.Message{
		Key:     event.Key,
		Value:   event.Value,
		Headers: headers,
	}
}
