package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the embedding store service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	CORSOrigin string `yaml:"cors_origin"`
}

// EmbeddingConfig selects and configures the embedding model endpoint.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`    // "openai", "ollama", "mock"
	BaseURL     string `yaml:"base_url"`    // OpenAI-compatible endpoint
	Model       string `yaml:"model"`       // e.g. "all-minilm"
	APIKeyEnv   string `yaml:"api_key_env"` // env var holding the key; empty for local servers
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Type     string       `yaml:"type"` // "qdrant", "bolt", "memory"
	Qdrant   QdrantConfig `yaml:"qdrant"`
	BoltPath string       `yaml:"bolt_path"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrieveConfig holds similarity search configuration.
type RetrieveConfig struct {
	TopK           int     `yaml:"top_k"`           // default result count
	MaxTopK        int     `yaml:"max_top_k"`       // upper bound; larger requests are rejected
	ScoreThreshold float64 `yaml:"score_threshold"` // results below this score are dropped
}

// IngestConfig holds batch file-ingestion configuration.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// DefaultConfig returns the default configuration: a local Ollama-style
// embedding server with 384-dimensional MiniLM vectors and a local
// Qdrant instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":3000",
			CORSOrigin: "http://localhost:8883",
		},
		Embedding: EmbeddingConfig{
			Provider:    "ollama",
			BaseURL:     "http://localhost:11434/v1",
			Model:       "all-minilm",
			Dimension:   384,
			TimeoutSecs: 60,
		},
		Store: StoreConfig{
			Type: "qdrant",
			Qdrant: QdrantConfig{
				URL:         "http://localhost:6333",
				Collection:  "documents",
				TimeoutSecs: 15,
			},
			BoltPath: "ragstore.db",
		},
		Retrieve: RetrieveConfig{
			TopK:           5,
			MaxTopK:        50,
			ScoreThreshold: 0.2,
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.git/**", "**/node_modules/**"},
		},
	}
}

// Load loads configuration from a YAML file, returning defaults if the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// ragstore.yaml), falling back to defaults.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragstore.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EmbeddingTimeout returns the embedding HTTP timeout as a duration.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSecs) * time.Second
}

// QdrantTimeout returns the Qdrant HTTP timeout as a duration.
func (c *Config) QdrantTimeout() time.Duration {
	return time.Duration(c.Store.Qdrant.TimeoutSecs) * time.Second
}
