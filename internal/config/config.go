package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ComplaintDesk server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Source   SourceConfig
	Ingest   IngestConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// SourceConfig selects and configures the complaint source adapter.
type SourceConfig struct {
	Kind          string // "sheets" or "file"
	Timeout       time.Duration
	OrderIDColumn string
	Sheets        SheetsConfig
	File          FileConfig
}

type SheetsConfig struct {
	BaseURL       string
	APIKey        string
	SpreadsheetID string
	Range         string
}

type FileConfig struct {
	Path string
}

// IngestConfig controls dedup key construction at ingest time.
type IngestConfig struct {
	// DedupFields is the projection of source columns hashed into the
	// content fingerprint, alongside the order id.
	DedupFields []string
	// ReceivedAtField is the source column parsed into received_at,
	// when present.
	ReceivedAtField string
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	OpenRouter       OpenRouterConfig
	Anthropic        AnthropicConfig
}

type OpenRouterConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

var validProviders = map[string]bool{
	"openrouter": true,
	"anthropic":  true,
}

var validSources = map[string]bool{
	"sheets": true,
	"file":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("COMPLAINTDESK_PORT", 8080),
			Env:  envString("COMPLAINTDESK_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Source: SourceConfig{
			Kind:          envString("SOURCE_KIND", "sheets"),
			Timeout:       envDuration("SOURCE_TIMEOUT", 30*time.Second),
			OrderIDColumn: envString("SOURCE_ORDER_ID_COLUMN", "Order ID"),
			Sheets: SheetsConfig{
				BaseURL:       envString("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
				APIKey:        os.Getenv("SHEETS_API_KEY"),
				SpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
				Range:         envString("SHEETS_RANGE", "Responses!A:Z"),
			},
			File: FileConfig{
				Path: os.Getenv("SOURCE_FILE_PATH"),
			},
		},
		Ingest: IngestConfig{
			DedupFields:     envList("INGEST_DEDUP_FIELDS", []string{"Complaint Category", "Product Name", "Description"}),
			ReceivedAtField: envString("INGEST_RECEIVED_AT_FIELD", "Timestamp"),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			OpenRouter: OpenRouterConfig{
				BaseURL: envString("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
				APIKey:  os.Getenv("OPENROUTER_API_KEY"),
				Model:   envString("OPENROUTER_MODEL", "deepseek/deepseek-chat"),
			},
			Anthropic: AnthropicConfig{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validSources[c.Source.Kind] {
		return fmt.Errorf("SOURCE_KIND must be one of sheets, file; got %q", c.Source.Kind)
	}
	if c.Source.Kind == "sheets" {
		if c.Source.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required when SOURCE_KIND is sheets")
		}
		if !strings.HasPrefix(c.Source.Sheets.BaseURL, "http://") && !strings.HasPrefix(c.Source.Sheets.BaseURL, "https://") {
			return fmt.Errorf("SHEETS_BASE_URL must start with http:// or https://, got %q", c.Source.Sheets.BaseURL)
		}
	}
	if c.Source.Kind == "file" && c.Source.File.Path == "" {
		return fmt.Errorf("SOURCE_FILE_PATH is required when SOURCE_KIND is file")
	}

	if len(c.Ingest.DedupFields) == 0 {
		return fmt.Errorf("INGEST_DEDUP_FIELDS must name at least one column")
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openrouter, anthropic; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "openrouter" && c.AI.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required when AI_PROVIDER is openrouter")
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
