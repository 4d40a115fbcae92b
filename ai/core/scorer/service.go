// Package scorer wraps a hosted cross-encoder relevance model. A single model
// scores a (query, candidate) text pair jointly; the raw score is mapped to a
// probability with the logistic sigmoid before threshold comparison.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrScoring marks failures of the underlying relevance model. The selection
// scan treats a scoring failure as below-threshold for that candidate only.
var ErrScoring = errors.New("scoring failed")

// Service is the relevance scoring service interface.
type Service interface {
	// Score returns the raw relatedness score of the (query, candidate) pair.
	Score(ctx context.Context, query, candidate string) (float64, error)

	// IsEnabled returns whether the service is enabled.
	IsEnabled() bool
}

// Config represents scorer service configuration.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Enabled bool
}

type service struct {
	client  *http.Client
	limiter *rate.Limiter
	apiKey  string
	baseURL string
	model   string
	enabled bool
}

// NewService creates a new scorer Service. Calls are rate limited because
// context selection issues one model call per history turn.
func NewService(cfg *Config) Service {
	return &service{
		enabled: cfg.Enabled,
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (s *service) IsEnabled() bool {
	return s.enabled
}

func (s *service) Score(ctx context.Context, query, candidate string) (float64, error) {
	if !s.enabled {
		return 0, fmt.Errorf("%w: service disabled", ErrScoring)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoring, err)
	}

	// The rerank wire shape with a single document gives the pairwise
	// cross-encoder logit for (query, candidate).
	reqBody := map[string]interface{}{
		"model":     s.model,
		"query":     query,
		"documents": []string{candidate},
		"top_n":     1,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoring, err)
	}

	baseURL := strings.TrimRight(s.baseURL, "/")
	if strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/rerank"
	} else {
		baseURL += "/v1/rerank"
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoring, err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoring, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, fmt.Errorf("%w: HTTP %d", ErrScoring, resp.StatusCode)
		}
		return 0, fmt.Errorf("%w: %s", ErrScoring, string(body))
	}

	var result struct {
		Results []struct {
			Index int     `json:"index"`
			Score float64 `json:"relevance_score"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoring, err)
	}

	if len(result.Results) == 0 {
		return 0, fmt.Errorf("%w: empty result", ErrScoring)
	}

	return result.Results[0].Score, nil
}

// Sigmoid maps a raw score to a probability in the open interval (0, 1).
// The two-branch form avoids overflow for large negative inputs, and the
// result is clamped because 1/(1+e^-x) rounds to exactly 1.0 in float64
// for x >= 37, which would defeat any threshold below 1.
func Sigmoid(x float64) float64 {
	var p float64
	if x >= 0 {
		p = 1 / (1 + math.Exp(-x))
	} else {
		e := math.Exp(x)
		p = e / (1 + e)
	}

	if p >= 1 {
		p = math.Nextafter(1, 0)
	}
	if p <= 0 {
		p = math.SmallestNonzeroFloat64
	}
	return p
}
