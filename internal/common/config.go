package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/corpus/internal/models"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Ingest      IngestConfig      `toml:"ingest"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	LLM         LLMConfig         `toml:"llm"`
	Gemini      GeminiConfig      `toml:"gemini"`
	Claude      ClaudeConfig      `toml:"claude"`
	WebSearch   WebSearchConfig   `toml:"web_search"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// IngestConfig controls the chunking and indexing pipeline.
type IngestConfig struct {
	ChunkSize int `toml:"chunk_size" validate:"gt=0"`
	// Overlap must stay below ChunkSize or the sliding window cannot advance.
	Overlap int `toml:"overlap" validate:"gte=0,ltfield=ChunkSize"`
	// GroupSize bounds how many chunk records are persisted per write.
	GroupSize int `toml:"group_size" validate:"gt=0"`
	// Timeout is the ceiling for one full ingestion request, e.g. "60s".
	Timeout string `toml:"timeout"`
	// MaxUploadBytes rejects oversized files before extraction.
	MaxUploadBytes int64 `toml:"max_upload_bytes" validate:"gt=0"`
}

// RetrievalConfig tunes similarity search and the web search policy.
type RetrievalConfig struct {
	TopK          int     `toml:"top_k" validate:"gt=0"`
	MinSimilarity float64 `toml:"min_similarity"`
	// WebConfidenceThreshold triggers web search when the top internal
	// similarity falls below it.
	WebConfidenceThreshold float64 `toml:"web_confidence_threshold"`
	// WebKeywords trigger web search when present in the query (case-insensitive).
	WebKeywords []string `toml:"web_keywords"`
	// WebPreviewLength bounds each web result's content in the prompt.
	WebPreviewLength int `toml:"web_preview_length" validate:"gt=0"`
}

// LLMConfig selects providers and fixes the embedding dimension shared with
// the vector store.
type LLMConfig struct {
	CompletionProvider string `toml:"completion_provider" validate:"oneof=claude gemini"`
	EmbedDimension     int    `toml:"embed_dimension" validate:"gt=0"`
	EmbedModel         string `toml:"embed_model"`
	// MaxConcurrency bounds concurrent embedding calls in a batch.
	MaxConcurrency int `toml:"max_concurrency" validate:"gt=0"`
	// RateLimit is the per-second ceiling on embedding calls.
	RateLimit int    `toml:"rate_limit" validate:"gt=0"`
	Timeout   string `toml:"timeout"`
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	ChatModel   string  `toml:"chat_model"`
	Temperature float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// WebSearchConfig configures the live web search client. An empty APIKey
// disables web search entirely (retrieval continues without it).
type WebSearchConfig struct {
	Endpoint   string `toml:"endpoint"`
	APIKey     string `toml:"api_key"`
	MaxResults int    `toml:"max_results" validate:"gt=0"`
	RateLimit  int    `toml:"rate_limit" validate:"gt=0"`
	Timeout    string `toml:"timeout"`
}

// MaintenanceConfig configures the failed-document sweeper.
type MaintenanceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron format
	// FailedRetention is how long FAILED documents are kept before the
	// sweeper removes them, e.g. "24h".
	FailedRetention string `toml:"failed_retention"`
}

// DefaultConfig returns the configuration defaults applied before any file,
// environment or flag overrides.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/corpus",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Ingest: IngestConfig{
			ChunkSize:      1000,
			Overlap:        200,
			GroupSize:      50,
			Timeout:        "60s",
			MaxUploadBytes: 10 * 1024 * 1024, // 10MB
		},
		Retrieval: RetrievalConfig{
			TopK:                   5,
			MinSimilarity:          0.5,
			WebConfidenceThreshold: 0.6,
			WebKeywords:            []string{"search", "latest", "news"},
			WebPreviewLength:       300,
		},
		LLM: LLMConfig{
			CompletionProvider: "claude",
			EmbedDimension:     3072,
			EmbedModel:         "gemini-embedding-001",
			MaxConcurrency:     4,
			RateLimit:          10,
			Timeout:            "30s",
		},
		Gemini: GeminiConfig{
			APIKey:      "", // user must provide API key
			ChatModel:   "gemini-2.0-flash",
			Temperature: 0.5,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // user must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   1024,
			Temperature: 0.5,
			Timeout:     "60s",
		},
		WebSearch: WebSearchConfig{
			Endpoint:   "https://api.firecrawl.dev",
			APIKey:     "", // empty disables web search
			MaxResults: 3,
			RateLimit:  2,
			Timeout:    "30s",
		},
		Maintenance: MaintenanceConfig{
			Enabled:         true,
			Schedule:        "0 * * * *", // hourly
			FailedRetention: "24h",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI.
// An empty path loads defaults plus environment overrides.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks constraints that would otherwise surface as runtime
// failures: non-advancing chunk windows, zero embedding dimensions, invalid
// durations. Violations are configuration errors, fatal and not retried.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return &models.ConfigurationError{Reason: err.Error()}
	}

	for name, value := range map[string]string{
		"ingest.timeout":     c.Ingest.Timeout,
		"llm.timeout":        c.LLM.Timeout,
		"claude.timeout":     c.Claude.Timeout,
		"web_search.timeout": c.WebSearch.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return &models.ConfigurationError{Reason: fmt.Sprintf("invalid duration for %s: %q", name, value)}
		}
	}
	if _, err := time.ParseDuration(c.Maintenance.FailedRetention); err != nil {
		return &models.ConfigurationError{Reason: fmt.Sprintf("invalid duration for maintenance.failed_retention: %q", c.Maintenance.FailedRetention)}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("CORPUS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("CORPUS_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("CORPUS_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("CORPUS_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("FIRECRAWL_API_KEY"); v != "" {
		config.WebSearch.APIKey = v
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
