package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol).
	// All providers (openai, groq, deepseek, siliconflow, ollama) use the same config.
	LLMProvider string // Provider identifier: openai, groq, deepseek, siliconflow, ollama
	LLMAPIKey   string
	LLMBaseURL  string // Optional, has a default per provider
	LLMModel    string
	LLMTimeout  int // LLM request timeout in seconds (default: 120)

	// SummaryModel is the model used for turn summaries. The summary workload
	// is small, so a lighter model is usually configured here.
	SummaryModel string

	// Relevance scorer (cross-encoder) configuration.
	ScorerModel     string
	ScorerAPIKey    string
	ScorerBaseURL   string
	ScorerThreshold float64 // sigmoid probability threshold for context selection

	// Embedding configuration (vector search tool).
	EmbeddingModel   string
	EmbeddingAPIKey  string
	EmbeddingBaseURL string

	// Translator configuration (LibreTranslate-compatible endpoint).
	TranslateBaseURL string
	TranslateAPIKey  string

	// Sandboxed code runner configuration.
	SandboxBaseURL string
	SandboxAPIKey  string

	// Web search configuration.
	WebSearchBaseURL string
	WebSearchAPIKey  string

	// DatasetDir is the root directory holding project dataset files.
	DatasetDir string

	Mode      string
	Addr      string
	Port      int
	Data      string
	Driver    string
	DSN       string
	Version   string
	AIEnabled bool
}

// Provider default configurations for LLM.
// Used when CBA_AI_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"groq": {
		BaseURL: "https://api.groq.com/openai/v1",
		Model:   "openai/gpt-oss-120b",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-72B-Instruct",
	},
	"ollama": {
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the LLM API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	// Unified LLM configuration
	p.LLMProvider = getEnvOrDefault("CBA_AI_LLM_PROVIDER", "groq")
	p.LLMAPIKey = getEnvOrDefault("CBA_AI_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("CBA_AI_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("CBA_AI_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("CBA_AI_LLM_TIMEOUT_SECONDS", 120)
	p.SummaryModel = getEnvOrDefault("CBA_AI_SUMMARY_MODEL", "openai/gpt-oss-20b")

	// AI is enabled if the API key is configured
	p.AIEnabled = p.LLMAPIKey != ""

	// Validate and apply provider defaults if not explicitly set
	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		p.LLMProvider = "groq"
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	// Relevance scorer configuration.
	// The default threshold 0.9 keeps context injection strict; 0.75 is the
	// documented looser setting for broader conversational continuity.
	p.ScorerModel = getEnvOrDefault("CBA_AI_SCORER_MODEL", "BAAI/bge-reranker-v2-m3")
	p.ScorerAPIKey = getEnvOrDefault("CBA_AI_SCORER_API_KEY", "")
	p.ScorerBaseURL = getEnvOrDefault("CBA_AI_SCORER_BASE_URL", "https://api.siliconflow.cn/v1")
	p.ScorerThreshold = getEnvOrDefaultFloat("CBA_AI_SCORER_THRESHOLD", 0.9)

	// Embedding configuration
	p.EmbeddingModel = getEnvOrDefault("CBA_AI_EMBEDDING_MODEL", "BAAI/bge-m3")
	p.EmbeddingAPIKey = getEnvOrDefault("CBA_AI_EMBEDDING_API_KEY", "")
	p.EmbeddingBaseURL = getEnvOrDefault("CBA_AI_EMBEDDING_BASE_URL", "https://api.siliconflow.cn/v1")

	// Translator configuration
	p.TranslateBaseURL = getEnvOrDefault("CBA_TRANSLATE_BASE_URL", "http://localhost:5000")
	p.TranslateAPIKey = getEnvOrDefault("CBA_TRANSLATE_API_KEY", "")

	// Sandboxed code runner configuration
	p.SandboxBaseURL = getEnvOrDefault("CBA_SANDBOX_BASE_URL", "http://localhost:49999")
	p.SandboxAPIKey = getEnvOrDefault("CBA_SANDBOX_API_KEY", "")

	// Web search configuration
	p.WebSearchBaseURL = getEnvOrDefault("CBA_WEBSEARCH_BASE_URL", "https://api.tavily.com")
	p.WebSearchAPIKey = getEnvOrDefault("CBA_WEBSEARCH_API_KEY", "")

	// Dataset directory
	p.DatasetDir = getEnvOrDefault("CBA_DATASET_DIR", "outbound/datasets")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "postgres" && p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.ScorerThreshold <= 0 || p.ScorerThreshold >= 1 {
		return errors.Errorf("scorer threshold must be in (0, 1), got %v", p.ScorerThreshold)
	}

	if p.Driver == "sqlite" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			dbFile := fmt.Sprintf("cba_%s.db", p.Mode)
			p.DSN = filepath.Join(dataDir, dbFile) + "?_loc=auto"
		}
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	return nil
}
