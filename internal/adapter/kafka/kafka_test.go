package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("milan"),
		Value:     []byte(`{"request_id":"req-1"}`),
		Topic:     "fusion-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("open-meteo")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("milan"), raw.Key)
	assert.JSONEq(t, `{"request_id":"req-1"}`, string(raw.Value))
	assert.Equal(t, "fusion-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "open-meteo", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	report := domain.FusionReport{
		ID:          "abc123",
		Location:    domain.Location{Key: "milan", Lat: 45.46, Lon: 9.19},
		Advisory:    domain.AdvisoryResult{Text: "Clear.", Source: domain.SourceRules},
		ProcessedAt: now,
	}
	out, err := domain.SerializeReport(report)
	require.NoError(t, err)

	msg := serializeToMessage(out)

	assert.Equal(t, []byte("milan"), msg.Key)
	assert.Contains(t, string(msg.Value), `"id":"abc123"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "location", msg.Headers[0].Key)
	assert.Equal(t, []byte("milan"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, "source", msg.Headers[2].Key)
	assert.Equal(t, []byte(domain.SourceRules), msg.Headers[2].Value)
}

func TestSerializeToMessage_NoHeaders(t *testing.T) {
	msg := serializeToMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("{}")})

	assert.Empty(t, msg.Headers)
	assert.Equal(t, []byte("{}"), msg.Value)
}
