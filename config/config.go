package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the PDF QA service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Provider  ProviderConfig  `yaml:"provider"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	CORS bool   `yaml:"cors"`
}

// StoreConfig selects and configures the chunk store backend.
type StoreConfig struct {
	Type   string       `yaml:"type"` // "qdrant", "bolt", "memory"
	Qdrant QdrantConfig `yaml:"qdrant"`
	Bolt   BoltConfig   `yaml:"bolt"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"` // Environment variable for API key
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// BoltConfig holds the embedded store settings.
type BoltConfig struct {
	Path string `yaml:"path"`
}

// ProviderConfig holds embedding/completion provider configuration.
type ProviderConfig struct {
	Type        string `yaml:"type"` // "openai", "groq", "openrouter", "gemini", "mock"
	APIKeyEnv   string `yaml:"api_key_env"`
	BaseURL     string `yaml:"base_url"`
	EmbedModel  string `yaml:"embed_model"`
	LLMModel    string `yaml:"llm_model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig holds the retrieval defaults.
type RetrievalConfig struct {
	TopK          int `yaml:"top_k"`
	FusionQueries int `yaml:"fusion_queries"`
	FusionTopK    int `yaml:"fusion_top_k"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
			CORS: true,
		},
		Store: StoreConfig{
			Type: "qdrant",
			Qdrant: QdrantConfig{
				URL:         "http://localhost:6333",
				APIKeyEnv:   "QDRANT_API_KEY",
				TimeoutSecs: 15,
			},
			Bolt: BoltConfig{
				Path: filepath.Join(".pdfqa", "chunks.db"),
			},
		},
		Provider: ProviderConfig{
			Type:        "openai",
			EmbedModel:  "text-embedding-3-small",
			LLMModel:    "gpt-4o-mini",
			Dimension:   1536,
			TimeoutSecs: 60,
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			FusionQueries: 3,
			FusionTopK:    3,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for pdfqa.yaml,
// then .pdfqa/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "pdfqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".pdfqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
