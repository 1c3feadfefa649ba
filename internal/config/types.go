package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// ClassifierType selects the intent classification strategy.
type ClassifierType string

const (
	ClassifierKeyword ClassifierType = "keyword"
	ClassifierModel   ClassifierType = "model"
	ClassifierHybrid  ClassifierType = "hybrid"
)

// Config is the top-level finbot configuration, corresponding to .finbot.yml.
type Config struct {
	Provider       ProviderType   `yaml:"provider" koanf:"provider"`
	Model          string         `yaml:"model" koanf:"model"`
	RouterModel    string         `yaml:"router_model" koanf:"router_model"`
	EmbeddingModel string         `yaml:"embedding_model" koanf:"embedding_model"`
	Classifier     ClassifierType `yaml:"classifier" koanf:"classifier"`
	// RateLimitRPM caps LLM requests per minute. Zero disables the cap.
	RateLimitRPM int `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	DataDir        string         `yaml:"data_dir" koanf:"data_dir"`
	Server         ServerConfig   `yaml:"server" koanf:"server"`
	Session        SessionConfig  `yaml:"session" koanf:"session"`
	Tasks          TasksConfig    `yaml:"tasks" koanf:"tasks"`
	Search         SearchConfig   `yaml:"search" koanf:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// SessionConfig controls the volatile per-session profile cache.
type SessionConfig struct {
	// TTLSeconds is how long an idle session survives. Zero or negative
	// falls back to the one-hour default.
	TTLSeconds int `yaml:"ttl_seconds" koanf:"ttl_seconds"`
}

// TasksConfig controls the async turn-processing workers.
type TasksConfig struct {
	Workers int `yaml:"workers" koanf:"workers"`
	// Sync executes submitted turns inline instead of through the worker
	// pool. Task handles still resolve through the same poll endpoint.
	Sync bool `yaml:"sync" koanf:"sync"`
}

// SearchConfig controls the product search collaborator.
type SearchConfig struct {
	TopK         int `yaml:"top_k" koanf:"top_k"`
	MaxTopK      int `yaml:"max_top_k" koanf:"max_top_k"`
	CandidateCap int `yaml:"candidate_cap" koanf:"candidate_cap"`
}
