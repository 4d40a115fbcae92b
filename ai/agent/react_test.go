package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reyharighy/cba/ai/core/llm"
)

// scriptedLLM returns its responses in order, one per ChatWithTools call.
type scriptedLLM struct {
	responses []*llm.ChatResponse
	calls     int
	messages  [][]llm.Message
}

func (s *scriptedLLM) Chat(context.Context, []llm.Message) (string, *llm.CallStats, error) {
	return "", nil, errors.New("not used")
}

func (s *scriptedLLM) ChatWithTools(_ context.Context, messages []llm.Message, _ []llm.ToolDescriptor) (*llm.ChatResponse, *llm.CallStats, error) {
	s.messages = append(s.messages, messages)
	if s.calls >= len(s.responses) {
		return nil, nil, fmt.Errorf("unexpected call %d", s.calls)
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, &llm.CallStats{}, nil
}

func (s *scriptedLLM) Warmup(context.Context) {}

func echoTool(name string) Tool {
	return NewNativeTool(name, "echoes arguments", `{"type":"object"}`,
		func(_ context.Context, arguments string) (string, error) {
			return "observed: " + arguments, nil
		})
}

func TestRunReActLoopDirectAnswer(t *testing.T) {
	service := &scriptedLLM{responses: []*llm.ChatResponse{
		{Content: "The answer is 42."},
	}}

	answer, err := runReActLoop(context.Background(), service, []llm.Message{llm.UserMessage("q")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", answer)
	assert.Equal(t, 1, service.calls)
}

func TestRunReActLoopToolRound(t *testing.T) {
	service := &scriptedLLM{responses: []*llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{{
			ID:       "call-1",
			Type:     "function",
			Function: llm.FunctionCall{Name: "execute_code", Arguments: `{"code":"print(1)"}`},
		}}},
		{Content: "Done: 1"},
	}}

	answer, err := runReActLoop(context.Background(), service,
		[]llm.Message{llm.UserMessage("q")}, []Tool{echoTool("execute_code")})
	require.NoError(t, err)
	assert.Equal(t, "Done: 1", answer)

	// Second call sees the assistant tool request and the tool observation.
	require.Equal(t, 2, service.calls)
	second := service.messages[1]
	require.Len(t, second, 3)
	assert.Equal(t, "assistant", second[1].Role)
	require.Len(t, second[1].ToolCalls, 1)
	assert.Equal(t, "tool", second[2].Role)
	assert.Equal(t, "call-1", second[2].ToolCallID)
	assert.Contains(t, second[2].Content, "observed:")
}

func TestRunReActLoopUnknownTool(t *testing.T) {
	service := &scriptedLLM{responses: []*llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{{
			ID:       "call-1",
			Function: llm.FunctionCall{Name: "missing_tool", Arguments: "{}"},
		}}},
	}}

	_, err := runReActLoop(context.Background(), service,
		[]llm.Message{llm.UserMessage("q")}, []Tool{echoTool("execute_code")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_tool")
}

func TestRunReActLoopToolFailurePropagates(t *testing.T) {
	boom := errors.New("kernel died")
	failing := NewNativeTool("execute_code", "fails", `{"type":"object"}`,
		func(context.Context, string) (string, error) {
			return "", boom
		})
	service := &scriptedLLM{responses: []*llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{{
			ID:       "call-1",
			Function: llm.FunctionCall{Name: "execute_code", Arguments: "{}"},
		}}},
	}}

	_, err := runReActLoop(context.Background(), service,
		[]llm.Message{llm.UserMessage("q")}, []Tool{failing})
	assert.ErrorIs(t, err, boom)
}

func TestRunReActLoopMaxIterations(t *testing.T) {
	// Always requests another tool call; must stop at the cap.
	responses := make([]*llm.ChatResponse, maxIterations)
	for i := range responses {
		responses[i] = &llm.ChatResponse{ToolCalls: []llm.ToolCall{{
			ID:       fmt.Sprintf("call-%d", i),
			Function: llm.FunctionCall{Name: "execute_code", Arguments: "{}"},
		}}}
	}
	service := &scriptedLLM{responses: responses}

	_, err := runReActLoop(context.Background(), service,
		[]llm.Message{llm.UserMessage("q")}, []Tool{echoTool("execute_code")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "converge")
	assert.Equal(t, maxIterations, service.calls)
}

func TestRunReActLoopContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runReActLoop(ctx, &scriptedLLM{}, []llm.Message{llm.UserMessage("q")}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
