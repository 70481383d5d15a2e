// Package kafka publishes API audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

// AuditWriter produces API call events to the audit topic.
// It implements http.AuditPublisher.
type AuditWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAuditWriter creates a Kafka producer for the configured audit topic.
func NewAuditWriter(brokers []string, topic string, logger *slog.Logger) *AuditWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AuditWriter{writer: w, logger: logger}
}

// Publish serializes and writes one API call event. Messages are keyed by
// request id so replays of the same request land on the same partition.
func (w *AuditWriter) Publish(ctx context.Context, event domain.APICallEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *AuditWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an APICallEvent into a Kafka message.
func serializeToMessage(event domain.APICallEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "endpoint", Value: []byte(event.Endpoint)},
			{Key: "recorded_at", Value: []byte(event.RecordedAt.Format(time.RFC3339))},
		},
	}, nil
}
