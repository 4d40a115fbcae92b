package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reyharighy/cba/ai/core/llm"
	"github.com/reyharighy/cba/ai/metrics"
)

// maxIterations bounds the reason/act loop. A well-behaved model settles in
// two or three rounds; hitting the cap means it is stuck cycling tools.
const maxIterations = 8

// runReActLoop drives the tool-calling conversation until the model answers
// without requesting a tool. Tool failures propagate: the whole turn fails
// rather than feeding the model a fabricated observation.
func runReActLoop(ctx context.Context, service llm.Service, messages []llm.Message, tools []Tool) (string, error) {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	descriptors := toolDescriptors(tools)

	for iteration := 0; iteration < maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		response, _, err := service.ChatWithTools(ctx, messages, descriptors)
		if err != nil {
			return "", fmt.Errorf("agent completion: %w", err)
		}

		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		for _, call := range response.ToolCalls {
			tool, ok := byName[call.Function.Name]
			if !ok {
				return "", fmt.Errorf("agent requested unknown tool %q", call.Function.Name)
			}

			slog.Debug("agent: tool call",
				"iteration", iteration,
				"tool", call.Function.Name,
			)

			start := time.Now()
			observation, err := tool.Run(ctx, call.Function.Arguments)
			metrics.ToolRunDuration.WithLabelValues(call.Function.Name).Observe(time.Since(start).Seconds())
			if err != nil {
				return "", fmt.Errorf("tool %s: %w", call.Function.Name, err)
			}

			messages = append(messages, llm.ToolMessage(call.ID, observation))
		}
	}

	return "", fmt.Errorf("agent did not converge within %d iterations", maxIterations)
}
