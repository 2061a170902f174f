package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

const (
	defaultPort           = 8000
	defaultTopK           = 3
	defaultTemperature    = 0.2
	defaultMaxTokens      = 512
	defaultEmbedCacheSize = 4096
	defaultEmbedCacheTTL  = 3600
)

type Config struct {
	Port          int                 `json:"port"`
	LogConfig     logger.LogConfig    `json:"log_config"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base"`
	AI            AIConfig            `json:"ai"`
	Retrieval     RetrievalConfig     `json:"retrieval"`
	CORSAllowlist []string            `json:"cors_allowlist"`
	RateLimitMS   int                 `json:"rate_limit_ms"`
}

// KnowledgeBaseConfig points at the documents. Dir is shorthand for a
// local store.
type KnowledgeBaseConfig struct {
	Dir   string       `json:"dir"`
	Store *StoreConfig `json:"store"`
}

type StoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Chat       ModelConfig      `json:"chat"`
	Extractor  *ModelConfig     `json:"extractor"`
	Embed      ModelConfig      `json:"embed"`
	EmbedCache EmbedCacheConfig `json:"embed_cache"`
}

// ModelConfig selects a provider and model. Data is handed to the provider
// factory untouched.
type ModelConfig struct {
	Provider    string      `json:"provider"`
	Model       string      `json:"model"`
	Temperature *float32    `json:"temperature"`
	MaxTokens   int         `json:"max_tokens"`
	Data        interface{} `json:"data"`
}

type EmbedCacheConfig struct {
	Size       int `json:"size"`
	TTLSeconds int `json:"ttl_seconds"`
}

type RetrievalConfig struct {
	TopK int `json:"top_k"`
}

// Load reads the JSON config at path. A .env file next to the working
// directory is loaded first and ${VAR} references in the file are expanded
// from the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(raw))
	var cfg Config
	if err := json.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if err := cfg.KnowledgeBase.normalize(); err != nil {
		return err
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = defaultTopK
	}
	if cfg.RateLimitMS < 0 {
		return fmt.Errorf("rate_limit_ms must not be negative")
	}
	if err := cfg.AI.Chat.check("ai.chat"); err != nil {
		return err
	}
	cfg.AI.Chat.defaults()
	if cfg.AI.Extractor == nil {
		extractor := cfg.AI.Chat
		cfg.AI.Extractor = &extractor
	} else {
		if err := cfg.AI.Extractor.check("ai.extractor"); err != nil {
			return err
		}
		cfg.AI.Extractor.defaults()
	}
	if err := cfg.AI.Embed.check("ai.embed"); err != nil {
		return err
	}
	if cfg.AI.EmbedCache.Size == 0 {
		cfg.AI.EmbedCache.Size = defaultEmbedCacheSize
	}
	if cfg.AI.EmbedCache.TTLSeconds == 0 {
		cfg.AI.EmbedCache.TTLSeconds = defaultEmbedCacheTTL
	}
	return nil
}

func (k *KnowledgeBaseConfig) normalize() error {
	if k.Store != nil {
		if strings.TrimSpace(k.Store.Type) == "" {
			return fmt.Errorf("knowledge_base.store.type is required")
		}
		return nil
	}
	if strings.TrimSpace(k.Dir) == "" {
		return fmt.Errorf("knowledge_base.dir or knowledge_base.store is required")
	}
	k.Store = &StoreConfig{Type: "local", Data: map[string]interface{}{"dir": k.Dir}}
	return nil
}

func (m *ModelConfig) check(name string) error {
	if strings.TrimSpace(m.Provider) == "" {
		return fmt.Errorf("%s.provider is required", name)
	}
	if strings.TrimSpace(m.Model) == "" {
		return fmt.Errorf("%s.model is required", name)
	}
	return nil
}

func (m *ModelConfig) defaults() {
	if m.Temperature == nil {
		t := float32(defaultTemperature)
		m.Temperature = &t
	}
	if m.MaxTokens == 0 {
		m.MaxTokens = defaultMaxTokens
	}
}

// ProviderArgs returns what the provider factory should decode.
func (m ModelConfig) ProviderArgs() interface{} {
	if m.Data == nil {
		return map[string]interface{}{}
	}
	return m.Data
}
