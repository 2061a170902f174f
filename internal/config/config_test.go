package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const minimal = `{
  "knowledge_base": {"dir": "./kb"},
  "ai": {
    "chat": {"provider": "azure", "model": "gpt-4o", "data": {"api_key": "${HMOBOT_TEST_KEY}", "endpoint": "https://x"}},
    "embed": {"provider": "azure", "model": "ada"}
  }
}`

func TestParseDefaults(t *testing.T) {
	t.Setenv("HMOBOT_TEST_KEY", "secret")
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, 3, cfg.Retrieval.TopK)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.InDelta(t, 0.2, *cfg.AI.Chat.Temperature, 1e-6)
	require.Equal(t, 512, cfg.AI.Chat.MaxTokens)
	require.NotNil(t, cfg.AI.Extractor)
	require.Equal(t, "gpt-4o", cfg.AI.Extractor.Model)
	require.Equal(t, 4096, cfg.AI.EmbedCache.Size)
	require.Equal(t, "local", cfg.KnowledgeBase.Store.Type)
	require.Equal(t, map[string]interface{}{"dir": "./kb"}, cfg.KnowledgeBase.Store.Data)

	data, ok := cfg.AI.Chat.ProviderArgs().(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "secret", data["api_key"])
	require.Equal(t, map[string]interface{}{}, cfg.AI.Embed.ProviderArgs())
}

func TestParseKeepsExplicitValues(t *testing.T) {
	cfg, err := Parse([]byte(`{
  "port": 9000,
  "knowledge_base": {"dir": "kb"},
  "retrieval": {"top_k": 5},
  "ai": {
    "chat": {"provider": "openai", "model": "gpt-4o", "temperature": 0, "max_tokens": 100},
    "extractor": {"provider": "openrouter", "model": "small"},
    "embed": {"provider": "openai", "model": "text-embedding-3-small"}
  }
}`))
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, 5, cfg.Retrieval.TopK)
	require.Zero(t, *cfg.AI.Chat.Temperature)
	require.Equal(t, 100, cfg.AI.Chat.MaxTokens)
	require.Equal(t, "openrouter", cfg.AI.Extractor.Provider)
	require.Equal(t, 512, cfg.AI.Extractor.MaxTokens)
}

func TestParseS3Store(t *testing.T) {
	cfg, err := Parse([]byte(`{
  "knowledge_base": {"store": {"type": "s3", "data": {"bucket": "kb", "prefix": "docs"}}},
  "ai": {
    "chat": {"provider": "gemini", "model": "gemini-2.0-flash"},
    "embed": {"provider": "gemini", "model": "text-embedding-004"}
  }
}`))
	require.NoError(t, err)
	require.Equal(t, "s3", cfg.KnowledgeBase.Store.Type)
	require.Empty(t, cfg.KnowledgeBase.Dir)

	_, err = Parse([]byte(`{"knowledge_base":{"store":{}},"ai":{"chat":{"provider":"a","model":"b"},"embed":{"provider":"a","model":"b"}}}`))
	require.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"no kb dir":   `{"ai":{"chat":{"provider":"openai","model":"m"},"embed":{"provider":"openai","model":"e"}}}`,
		"no chat":     `{"knowledge_base":{"dir":"kb"},"ai":{"embed":{"provider":"openai","model":"e"}}}`,
		"no embed":    `{"knowledge_base":{"dir":"kb"},"ai":{"chat":{"provider":"openai","model":"m"}}}`,
		"bad json":    `{"knowledge_base":`,
		"bad extract": `{"knowledge_base":{"dir":"kb"},"ai":{"chat":{"provider":"openai","model":"m"},"extractor":{"model":"x"},"embed":{"provider":"openai","model":"e"}}}`,
	}
	for name, raw := range tests {
		_, err := Parse([]byte(raw))
		require.Error(t, err, name)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HMOBOT_TEST_KEY", "from-env")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./kb", cfg.KnowledgeBase.Dir)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
