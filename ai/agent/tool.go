// Package agent runs one conversation turn end to end: context selection,
// the tool-calling reasoning loop, summarization, and persistence.
package agent

import (
	"context"

	"github.com/reyharighy/cba/ai/core/llm"
)

// Tool is one capability the LLM can invoke during a turn.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema describing the tool arguments.
	Parameters() string
	// Run executes the tool with raw JSON arguments and returns the
	// observation text fed back to the LLM.
	Run(ctx context.Context, arguments string) (string, error)
}

type nativeTool struct {
	name        string
	description string
	parameters  string
	fn          func(ctx context.Context, arguments string) (string, error)
}

// NewNativeTool wraps a function as a Tool.
func NewNativeTool(name, description, parameters string, fn func(ctx context.Context, arguments string) (string, error)) Tool {
	return &nativeTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

func (t *nativeTool) Name() string        { return t.name }
func (t *nativeTool) Description() string { return t.description }
func (t *nativeTool) Parameters() string  { return t.parameters }

func (t *nativeTool) Run(ctx context.Context, arguments string) (string, error) {
	return t.fn(ctx, arguments)
}

func toolDescriptors(tools []Tool) []llm.ToolDescriptor {
	descriptors := make([]llm.ToolDescriptor, len(tools))
	for i, t := range tools {
		descriptors[i] = llm.ToolDescriptor{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return descriptors
}
