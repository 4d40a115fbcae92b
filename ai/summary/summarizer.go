// Package summary derives the stored per-turn summary. The summary is what
// future context selection scores against, so it must compress the response
// into plain prose.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reyharighy/cba/ai/core/llm"
	"github.com/reyharighy/cba/ai/textnorm"
)

// ErrSummary marks summary generation failures. Not retried internally;
// the caller decides whether the turn fails.
var ErrSummary = errors.New("summary generation failed")

// The summary must come from the answer alone: deriving it from the question
// would make every stored summary score highly against follow-up questions.
const instruction = `You are given a question and its answer.
Write a concise summary derived only from the answer, never from the question.
Use the same language the question and answer are written in.
Return plain text without any markup or formatting.`

// Summarizer produces a plain-text summary for one completed turn.
type Summarizer interface {
	Summarize(ctx context.Context, query, response string) (string, error)
}

type llmSummarizer struct {
	llm llm.Service
}

// NewSummarizer creates a Summarizer backed by an LLM service.
func NewSummarizer(service llm.Service) Summarizer {
	return &llmSummarizer{llm: service}
}

func (s *llmSummarizer) Summarize(ctx context.Context, query, response string) (string, error) {
	messages := []llm.Message{
		llm.SystemPrompt(instruction),
		llm.UserMessage(fmt.Sprintf("Question: %s\n\nAnswer: %s", query, response)),
	}

	content, _, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummary, err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: empty summary", ErrSummary)
	}

	return content, nil
}

type fallbackSummarizer struct{}

// NewFallbackSummarizer creates a Summarizer that truncates the response
// instead of calling an LLM. Selected when no LLM API key is configured,
// so demo and offline runs still persist a scoreable summary.
func NewFallbackSummarizer() Summarizer {
	return fallbackSummarizer{}
}

func (fallbackSummarizer) Summarize(_ context.Context, _, response string) (string, error) {
	return FallbackSummarize(response), nil
}

const fallbackMaxLen = 200

// FallbackSummarize truncates the response into a crude summary. Used when
// no LLM service is available, e.g. in demo mode.
func FallbackSummarize(response string) string {
	plain := textnorm.MarkdownToPlainText(response)
	if len(plain) <= fallbackMaxLen {
		return plain
	}

	cut := plain[:fallbackMaxLen]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
