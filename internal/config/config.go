package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config is the top-level docgpt configuration, corresponding to .docgpt.yml.
type Config struct {
	Model          string  `yaml:"model" koanf:"model"`
	Temperature    float64 `yaml:"temperature" koanf:"temperature"`
	MaxTokens      int     `yaml:"max_tokens" koanf:"max_tokens"`
	TopP           float64 `yaml:"top_p" koanf:"top_p"`
	SystemPrompt   string  `yaml:"system_prompt" koanf:"system_prompt"`
	EmbeddingModel string  `yaml:"embedding_model" koanf:"embedding_model"`
	KnowledgeBase  string  `yaml:"knowledge_base" koanf:"knowledge_base"`
	Collection     string  `yaml:"collection" koanf:"collection"`
	ChunkSize      int     `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	RetrievalLimit int     `yaml:"retrieval_limit" koanf:"retrieval_limit"`
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DOCGPT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: DOCGPT_MODEL -> model, etc.
	if err := k.Load(env.Provider("DOCGPT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DOCGPT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}
	if c.KnowledgeBase == "" {
		return fmt.Errorf("knowledge_base is required")
	}
	if c.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be non-negative")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be smaller than chunk_size")
	}
	if c.RetrievalLimit <= 0 {
		return fmt.Errorf("retrieval_limit must be positive")
	}
	return nil
}
