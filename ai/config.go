// Package ai assembles the AI service graph from a profile.
package ai

import (
	"github.com/reyharighy/cba/ai/contextsel"
	"github.com/reyharighy/cba/ai/core/llm"
	"github.com/reyharighy/cba/ai/core/scorer"
	"github.com/reyharighy/cba/ai/embedding"
	"github.com/reyharighy/cba/ai/lang"
	"github.com/reyharighy/cba/ai/sandbox"
	"github.com/reyharighy/cba/ai/search"
	"github.com/reyharighy/cba/ai/summary"
	"github.com/reyharighy/cba/internal/profile"
)

// Config holds the constructed AI services shared across sessions.
type Config struct {
	LLM        llm.Service
	SummaryLLM llm.Service
	Scorer     scorer.Service
	Detector   lang.Detector
	Translator lang.Translator
	Summarizer summary.Summarizer
	Embedding  embedding.Provider
	Sandbox    *sandbox.Client
	WebSearch  *search.Client

	Selector *contextsel.Config
}

// NewConfigFromProfile builds every AI collaborator from profile settings.
// Services are constructed eagerly; none of them dials out until first use.
func NewConfigFromProfile(p *profile.Profile) (*Config, error) {
	llmService, err := llm.NewService(&llm.Config{
		Provider: p.LLMProvider,
		Model:    p.LLMModel,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
		Timeout:  p.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}

	// The summary workload is small and frequent, so it gets its own,
	// usually lighter, model on the same provider.
	summaryModel := p.SummaryModel
	if summaryModel == "" {
		summaryModel = p.LLMModel
	}
	summaryLLM, err := llm.NewService(&llm.Config{
		Provider: p.LLMProvider,
		Model:    summaryModel,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
		Timeout:  p.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}

	scorerService := scorer.NewService(&scorer.Config{
		Model:   p.ScorerModel,
		APIKey:  p.ScorerAPIKey,
		BaseURL: p.ScorerBaseURL,
		Enabled: p.ScorerAPIKey != "",
	})

	// Without an LLM key the summary call could never succeed; fall back to
	// truncation so offline runs still produce a scoreable summary.
	var summarizer summary.Summarizer = summary.NewSummarizer(summaryLLM)
	if !p.IsAIEnabled() {
		summarizer = summary.NewFallbackSummarizer()
	}

	return &Config{
		LLM:        llmService,
		SummaryLLM: summaryLLM,
		Scorer:     scorerService,
		Detector:   lang.NewDetector(),
		Translator: lang.NewTranslator(&lang.TranslatorConfig{
			BaseURL: p.TranslateBaseURL,
			APIKey:  p.TranslateAPIKey,
		}),
		Summarizer: summarizer,
		Embedding: embedding.NewProvider(&embedding.Config{
			Model:   p.EmbeddingModel,
			APIKey:  p.EmbeddingAPIKey,
			BaseURL: p.EmbeddingBaseURL,
		}),
		Sandbox: sandbox.NewClient(&sandbox.Config{
			BaseURL: p.SandboxBaseURL,
			APIKey:  p.SandboxAPIKey,
		}),
		WebSearch: search.NewClient(&search.Config{
			BaseURL: p.WebSearchBaseURL,
			APIKey:  p.WebSearchAPIKey,
		}),
		Selector: &contextsel.Config{
			Threshold: p.ScorerThreshold,
		},
	}, nil
}
