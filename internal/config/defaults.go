package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOpenAI,
		Model:          "gpt-4o-mini",
		RouterModel:    "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Classifier:     ClassifierHybrid,
		RateLimitRPM:   60,
		DataDir:        ".finbot",
		Server: ServerConfig{
			Port: 8410,
		},
		Session: SessionConfig{
			TTLSeconds: 3600,
		},
		Tasks: TasksConfig{
			Workers: 4,
		},
		Search: SearchConfig{
			TopK:         5,
			MaxTopK:      50,
			CandidateCap: 200,
		},
	}
}
