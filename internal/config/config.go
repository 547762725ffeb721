package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	AI            AIConfig         `json:"ai"`
	Chat          ChatConfig       `json:"chat"`
	Ingest        IngestConfig     `json:"ingest"`
	CORSAllowlist []string         `json:"cors_allowlist"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider       string          `json:"provider"`
	Model          string          `json:"model"`
	EmbedModel     string          `json:"embed_model"`
	EmbedDims      int             `json:"embed_dims"`
	TimeoutSeconds int             `json:"timeout_seconds"`
	Data           json.RawMessage `json:"data"`
}

type ChatConfig struct {
	DefaultThreshold float64 `json:"default_threshold"`
	TopK             int     `json:"top_k"`
}

type IngestConfig struct {
	MaxResults          int           `json:"max_results"`
	FetchTimeoutSeconds int           `json:"fetch_timeout_seconds"`
	MaxTextChars        int           `json:"max_text_chars"`
	Workers             int           `json:"workers"`
	PaceMillis          int           `json:"pace_millis"`
	Refresh             RefreshConfig `json:"refresh"`
}

type RefreshConfig struct {
	Spec    string         `json:"spec"`
	Queries []RefreshQuery `json:"queries"`
}

type RefreshQuery struct {
	Query string `json:"query"`
	K     int    `json:"k"`
	Store bool   `json:"store"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.EmbedModel == "" {
		cfg.AI.EmbedModel = "text-embedding-3-small"
	}
	if cfg.AI.EmbedDims == 0 {
		cfg.AI.EmbedDims = 1536
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 30
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Chat.DefaultThreshold == 0 {
		cfg.Chat.DefaultThreshold = 0.60
	}
	if cfg.Chat.DefaultThreshold < 0 || cfg.Chat.DefaultThreshold > 1 {
		return nil, fmt.Errorf("chat.default_threshold must be in [0,1]")
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 3
	}
	if cfg.Ingest.MaxResults == 0 {
		cfg.Ingest.MaxResults = 5
	}
	if cfg.Ingest.FetchTimeoutSeconds == 0 {
		cfg.Ingest.FetchTimeoutSeconds = 10
	}
	if cfg.Ingest.MaxTextChars == 0 {
		cfg.Ingest.MaxTextChars = 20000
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 4
	}
	if cfg.Ingest.PaceMillis == 0 {
		cfg.Ingest.PaceMillis = 500
	}
	for i, q := range cfg.Ingest.Refresh.Queries {
		if q.Query == "" {
			return nil, fmt.Errorf("ingest.refresh.queries[%d].query is required", i)
		}
		if q.K == 0 {
			cfg.Ingest.Refresh.Queries[i].K = cfg.Ingest.MaxResults
		}
	}
	if len(cfg.Ingest.Refresh.Queries) > 0 && cfg.Ingest.Refresh.Spec == "" {
		return nil, fmt.Errorf("ingest.refresh.spec is required when refresh queries are set")
	}
	return &cfg, nil
}
