package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrTranslation marks translation failures: unsupported language pairs or
// service unavailability. The selection scan skips the candidate and
// continues rather than aborting.
var ErrTranslation = errors.New("translation failed")

// Translator converts text between languages. It is used only when a query's
// detected language differs from a candidate turn's language, to bring the
// query into the turn's language space before scoring.
type Translator interface {
	Translate(ctx context.Context, text string, from, to Code) (string, error)
}

// TranslatorConfig represents translator service configuration.
type TranslatorConfig struct {
	BaseURL string
	APIKey  string
}

type httpTranslator struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
}

// NewTranslator creates a Translator speaking the LibreTranslate wire protocol.
func NewTranslator(cfg *TranslatorConfig) Translator {
	return &httpTranslator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
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

func (t *httpTranslator) Translate(ctx context.Context, text string, from, to Code) (string, error) {
	if from == to {
		return text, nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}

	reqBody := map[string]string{
		"q":      text,
		"source": string(from),
		"target": string(to),
		"format": "text",
	}
	if t.apiKey != "" {
		reqBody["api_key"] = t.apiKey
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%w: HTTP %d", ErrTranslation, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: %s", ErrTranslation, string(body))
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}

	if result.TranslatedText == "" {
		return "", fmt.Errorf("%w: empty translation", ErrTranslation)
	}

	return result.TranslatedText, nil
}
