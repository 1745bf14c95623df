package textgen

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-fusion-service/internal/observability"
)

const (
	testKey           = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(t *testing.T, baseURL string) (*Client, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetricsForTesting()
	c := NewClient(Config{
		APIKey:  testKey,
		BaseURL: baseURL + "/v1",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	return c, m
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-1",
		Object: "chat.completion",
		Model:  "test-model",
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}

func TestClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
		assert.Equal(t, "rewrite this", req.Messages[1].Content)

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(completion(`{"text":"hello"}`)))
	}))
	defer srv.Close()

	c, m := testClient(t, srv.URL)
	got, err := c.Generate(context.Background(), "rewrite this")

	require.NoError(t, err)
	assert.Equal(t, `{"text":"hello"}`, got)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TextgenRequests.WithLabelValues("success")), 0)
}

func TestClient_Generate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer srv.Close()

	c, m := testClient(t, srv.URL)
	_, err := c.Generate(context.Background(), "p")

	require.Error(t, err)
	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatusCode)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TextgenRequests.WithLabelValues("error")), 0)
}

func TestClient_Generate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "x"}))
	}))
	defer srv.Close()

	c, _ := testClient(t, srv.URL)
	_, err := c.Generate(context.Background(), "p")

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_Generate_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"bad gateway"}}`))
	}))
	defer srv.Close()

	c, m := testClient(t, srv.URL)
	for range 6 {
		_, err := c.Generate(context.Background(), "p")
		require.Error(t, err)
	}

	_, err := c.Generate(context.Background(), "p")

	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(6), hits.Load(), "open circuit does not reach the server")
	assert.InDelta(t, 1, testutil.ToFloat64(m.TextgenRequests.WithLabelValues("rejected")), 0)
}

func TestClient_Generate_RateLimitHonorsContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(completion("ok")))
	}))
	defer srv.Close()

	c, m := testClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, "p")

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, hits.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(m.TextgenRequests.WithLabelValues("rejected")), 0)
}

func TestCountsAsSuccess(t *testing.T) {
	assert.True(t, countsAsSuccess(nil))
	assert.True(t, countsAsSuccess(context.Canceled))
	assert.False(t, countsAsSuccess(context.DeadlineExceeded))
	assert.False(t, countsAsSuccess(ErrEmptyResponse))
}
