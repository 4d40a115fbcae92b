package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reyharighy/cba/internal/profile"
)

func TestNewConfigFromProfile(t *testing.T) {
	p := &profile.Profile{
		LLMProvider: "groq",
		LLMAPIKey:   "key",
		LLMModel:    "openai/gpt-oss-120b",
	}

	cfg, err := NewConfigFromProfile(p)
	require.NoError(t, err)
	assert.NotNil(t, cfg.LLM)
	assert.NotNil(t, cfg.SummaryLLM)
	assert.NotNil(t, cfg.Scorer)
	assert.NotNil(t, cfg.Detector)
	assert.NotNil(t, cfg.Translator)
	assert.NotNil(t, cfg.Summarizer)
	assert.NotNil(t, cfg.Sandbox)
	assert.NotNil(t, cfg.WebSearch)
}

func TestNewConfigFromProfileWithoutLLMKey(t *testing.T) {
	cfg, err := NewConfigFromProfile(&profile.Profile{LLMProvider: "groq"})
	require.NoError(t, err)

	// No LLM key: the summarizer must work offline via truncation rather
	// than depending on a chat call that can never succeed.
	got, serr := cfg.Summarizer.Summarize(context.Background(), "q", "**Sales** were up.")
	require.NoError(t, serr)
	assert.Equal(t, "Sales were up.", got)
}
