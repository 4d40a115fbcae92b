// Package sandbox is the client for the isolated Python execution service.
// Each run is stateless on the service side: the dataset is uploaded first
// and no interpreter state survives across calls.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrSandbox marks code execution service failures.
var ErrSandbox = errors.New("sandbox execution failed")

// RunResult represents the outcome of one code execution.
type RunResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	// Result carries the repr of the last expression, when the service
	// evaluates one.
	Result string `json:"result"`
}

// Config represents sandbox service configuration.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client talks to the sandbox service over HTTP.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a sandbox Client. The timeout is generous because a run
// covers interpreter startup plus the user code itself.
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// UploadFile places a file into the sandbox working directory so executed
// code can read it by name.
func (c *Client) UploadFile(ctx context.Context, name string, content []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSandbox, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/files", &body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: upload HTTP %d", ErrSandbox, resp.StatusCode)
	}
	return nil
}

// Run executes Python code and returns its captured output.
func (c *Client) Run(ctx context.Context, code string) (*RunResult, error) {
	body, err := json.Marshal(map[string]string{
		"language": "python",
		"code":     code,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandbox, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: HTTP %d", ErrSandbox, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrSandbox, string(msg))
	}

	var result RunResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	return &result, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
