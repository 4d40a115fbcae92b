package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/reyharighy/cba/ai/sandbox"
	"github.com/reyharighy/cba/ai/search"
	"github.com/reyharighy/cba/ai/vector"
)

// NewExecuteCodeTool runs Python against the project dataset in the sandbox.
// The dataset must already be uploaded into the sandbox working directory.
func NewExecuteCodeTool(client *sandbox.Client) Tool {
	const parameters = `{
		"type": "object",
		"properties": {
			"code": {
				"type": "string",
				"description": "Python code to execute. The dataset CSV is available in the working directory. Print the values you need."
			}
		},
		"required": ["code"]
	}`

	return NewNativeTool(
		"execute_code",
		"Execute Python code against the project dataset and return its output. Use this for any computation over the data.",
		parameters,
		func(ctx context.Context, arguments string) (string, error) {
			var args struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", fmt.Errorf("execute_code: invalid arguments: %w", err)
			}

			result, err := client.Run(ctx, args.Code)
			if err != nil {
				return "", fmt.Errorf("execute_code: %w", err)
			}

			var sb strings.Builder
			if result.Stdout != "" {
				fmt.Fprintf(&sb, "stdout:\n%s\n", result.Stdout)
			}
			if result.Stderr != "" {
				fmt.Fprintf(&sb, "stderr:\n%s\n", result.Stderr)
			}
			if result.Result != "" {
				fmt.Fprintf(&sb, "result: %s\n", result.Result)
			}
			if sb.Len() == 0 {
				return "(no output)", nil
			}
			return sb.String(), nil
		},
	)
}

// NewVectorSearchTool searches past turns of the project by semantic
// similarity.
func NewVectorSearchTool(service *vector.Service, projectID uuid.UUID) Tool {
	const parameters = `{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Text to search past conversation turns for."
			},
			"top_k": {
				"type": "integer",
				"description": "Number of results to return. Defaults to 5."
			}
		},
		"required": ["query"]
	}`

	return NewNativeTool(
		"vector_search",
		"Search earlier turns of this conversation by meaning. Use this to recall what was already analyzed or answered.",
		parameters,
		func(ctx context.Context, arguments string) (string, error) {
			var args struct {
				Query string `json:"query"`
				TopK  int    `json:"top_k"`
			}
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", fmt.Errorf("vector_search: invalid arguments: %w", err)
			}

			hits, err := service.Search(ctx, projectID, args.Query, args.TopK)
			if err != nil {
				return "", fmt.Errorf("vector_search: %w", err)
			}
			if len(hits) == 0 {
				return "No matching past turns.", nil
			}

			var sb strings.Builder
			for i, hit := range hits {
				fmt.Fprintf(&sb, "%d. (score %.3f) Q: %s\n   Summary: %s\n",
					i+1, hit.Score, hit.Turn.Query, hit.Turn.Summary)
			}
			return sb.String(), nil
		},
	)
}

// NewWebSearchTool searches the web for facts outside the dataset.
func NewWebSearchTool(client *search.Client) Tool {
	const parameters = `{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Web search query."
			}
		},
		"required": ["query"]
	}`

	return NewNativeTool(
		"web_search",
		"Search the web. Use this only for facts that cannot come from the dataset, such as industry benchmarks or definitions.",
		parameters,
		func(ctx context.Context, arguments string) (string, error) {
			var args struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", fmt.Errorf("web_search: invalid arguments: %w", err)
			}

			hits, err := client.Search(ctx, args.Query, 5)
			if err != nil {
				return "", fmt.Errorf("web_search: %w", err)
			}
			if len(hits) == 0 {
				return "No results.", nil
			}

			var sb strings.Builder
			for i, hit := range hits {
				fmt.Fprintf(&sb, "%d. %s (%s)\n   %s\n", i+1, hit.Title, hit.URL, hit.Content)
			}
			return sb.String(), nil
		},
	)
}
