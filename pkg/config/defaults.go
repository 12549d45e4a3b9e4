package config

const (
	defaultLLMProvider = "groq"
	defaultLLMModel    = "llama-3.3-70b-versatile"
	defaultLLMTimeout  = 30

	defaultAgentName = "kotori"

	defaultVectorProvider = "sqlite"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultMemoryCollection    = "kotori_memory"
	defaultReferenceCollection = "kotori_reference"

	defaultAPIListen       = ":8081"
	defaultClientAPITarget = "http://localhost:8081"

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "kotori.turns"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		LLM: LLMConfig{
			Provider:       defaultLLMProvider,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Router: RouterConfig{
			AgentName: defaultAgentName,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Memory: MemoryConfig{
			Collection: defaultMemoryCollection,
		},
		Reference: ReferenceConfig{
			Collection: defaultReferenceCollection,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
