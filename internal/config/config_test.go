package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"host": "localhost", "port": 5432, "user": "kb", "password": "kb", "db_name": "kb"},
		"ai": {"provider": "openai", "data": {"api_key": "sk-test"}}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	require.Equal(t, "text-embedding-3-small", cfg.AI.EmbedModel)
	require.Equal(t, 1536, cfg.AI.EmbedDims)
	require.Equal(t, 0.60, cfg.Chat.DefaultThreshold)
	require.Equal(t, 3, cfg.Chat.TopK)
	require.Equal(t, 5, cfg.Ingest.MaxResults)
	require.Equal(t, 10, cfg.Ingest.FetchTimeoutSeconds)
	require.Equal(t, 20000, cfg.Ingest.MaxTextChars)
	require.Equal(t, 4, cfg.Ingest.Workers)
	require.Equal(t, "info", cfg.LogConfig.Level)
}

func TestLoadMissingPort(t *testing.T) {
	path := writeConfig(t, `{"database": {"host": "x"}, "ai": {"provider": "openai"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingDatabase(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "ai": {"provider": "openai"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingProvider(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "database": {"dsn": "postgres://"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"dsn": "postgres://"},
		"ai": {"provider": "openai"},
		"chat": {"default_threshold": 1.5}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRefreshValidation(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"dsn": "postgres://"},
		"ai": {"provider": "openai"},
		"ingest": {"refresh": {"queries": [{"query": "acme widget"}]}}
	}`)
	_, err := Load(path)
	require.Error(t, err, "refresh queries without a cron spec must be rejected")

	path = writeConfig(t, `{
		"port": 8080,
		"database": {"dsn": "postgres://"},
		"ai": {"provider": "openai"},
		"ingest": {"refresh": {"spec": "0 * * * *", "queries": [{"query": "acme widget"}]}}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Ingest.Refresh.Queries[0].K, "k defaults to ingest.max_results")
}
