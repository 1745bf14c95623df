//go:build textgen

package textgen

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-fusion-service/internal/enhance"
	"github.com/couchcryptid/weather-fusion-service/internal/observability"
)

// These tests hit a real OpenAI-compatible endpoint and require AI_API_KEY.
// Run with: go test -tags=textgen ./internal/adapter/textgen/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("AI_API_KEY")
	if key == "" {
		t.Fatal("AI_API_KEY must be set to run smoke tests")
	}
	return NewClient(Config{
		APIKey:  key,
		BaseURL: os.Getenv("AI_BASE_URL"),
		Model:   os.Getenv("AI_MODEL"),
		Timeout: 30 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestSmoke_GenerateEnhancement(t *testing.T) {
	c := smokeClient(t)
	prompt := enhance.BuildPrompt(enhance.PromptInput{
		Place:     "Milano",
		Lang:      "en",
		Unit:      "celsius",
		Condition: "Clear sky",
		RulesText: "Good morning. The sky is clear and sunny. It feels mild (17°C).",
	})

	text, err := c.Generate(context.Background(), prompt)
	require.NoError(t, err)

	e, err := enhance.ParseEnhancement(text)
	require.NoError(t, err)
	assert.NotEmpty(t, e.Text)
	assert.LessOrEqual(t, len(e.Tips), 4)
}
