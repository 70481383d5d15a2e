//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dish-discovery-service/internal/adapter/kafka"
	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

const testAuditTopic = "test-api-audit"

// TestAuditWriterRoundTrip publishes an API call event through the audit
// writer and verifies key, headers, and payload on the topic.
func TestAuditWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAuditTopic)

	writer := kafka.NewAuditWriter([]string{broker}, testAuditTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	recordedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	event := domain.APICallEvent{
		EventName:  "api_call_dish-media",
		Endpoint:   "dish-media",
		Method:     "GET",
		Version:    "v1",
		RequestID:  "req-integration-1",
		UserID:     "user-1",
		Status:     200,
		RecordedAt: recordedAt,
	}
	require.NoError(t, writer.Publish(ctx, event))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAuditTopic,
		GroupID:     fmt.Sprintf("test-audit-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from audit topic")

	assert.Equal(t, []byte("req-integration-1"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "dish-media", headers["endpoint"])
	assert.Equal(t, recordedAt.Format(time.RFC3339), headers["recorded_at"])

	var got domain.APICallEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, event, got)
}
