package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent kotori configuration stored as config.toml
// in the .kotori/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	LLM         LLMConfig         `toml:"llm"`
	Router      RouterConfig      `toml:"router"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Memory      MemoryConfig      `toml:"memory"`
	Reference   ReferenceConfig   `toml:"reference"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// LLMConfig selects the language model service used for routing and generation.
type LLMConfig struct {
	Provider       string `toml:"provider,omitempty"`
	Model          string `toml:"model,omitempty"`
	BaseURL        string `toml:"base_url,omitempty"`
	APIKey         string `toml:"api_key,omitempty"`
	TimeoutSeconds uint   `toml:"timeout_seconds,omitempty"`
}

// LLMTimeout is the per-request timeout for model and embedding calls.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// RouterConfig holds intent router settings.
type RouterConfig struct {
	// AgentName is matched by greeting detection ("hi <name>").
	AgentName string `toml:"agent_name,omitempty"`
}

// VectorStoreConfig holds vector store settings. Target is a file path for
// sqlite, a URL for chroma and qdrant, and a DSN for pgvector.
type VectorStoreConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// MemoryConfig holds conversation memory settings.
type MemoryConfig struct {
	Collection string `toml:"collection,omitempty"`
}

// ReferenceConfig holds reference document index settings.
type ReferenceConfig struct {
	Collection string `toml:"collection,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running
// kotori API server. Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// EventStreamConfig holds turn event publishing settings.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"llm.provider":            stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.model":               stringKey(func(c *Config) *string { return &c.LLM.Model }),
	"llm.base_url":            stringKey(func(c *Config) *string { return &c.LLM.BaseURL }),
	"llm.api_key":             stringKey(func(c *Config) *string { return &c.LLM.APIKey }),
	"llm.timeout_seconds":     uintKey("llm.timeout_seconds", func(c *Config) *uint { return &c.LLM.TimeoutSeconds }),
	"router.agent_name":       stringKey(func(c *Config) *string { return &c.Router.AgentName }),
	"vector_store.provider":   stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":     stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"embedding.provider":      stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":        stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":         stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions":    uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),
	"memory.collection":       stringKey(func(c *Config) *string { return &c.Memory.Collection }),
	"reference.collection":    stringKey(func(c *Config) *string { return &c.Reference.Collection }),
	"api.listen":              stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.api_target":       stringKey(func(c *Config) *string { return &c.Client.APITarget }),
	"eventstream.provider":    stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"eventstream.brokers":     stringKey(func(c *Config) *string { return &c.EventStream.Brokers }),
	"eventstream.topic":       stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
}
