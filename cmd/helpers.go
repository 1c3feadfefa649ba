package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jwhyun/finbot/internal/agent"
	"github.com/jwhyun/finbot/internal/chat"
	"github.com/jwhyun/finbot/internal/config"
	"github.com/jwhyun/finbot/internal/db"
	"github.com/jwhyun/finbot/internal/embeddings"
	"github.com/jwhyun/finbot/internal/intent"
	"github.com/jwhyun/finbot/internal/llm"
	"github.com/jwhyun/finbot/internal/products"
	"github.com/jwhyun/finbot/internal/profile"
	"github.com/jwhyun/finbot/internal/query"
	"github.com/jwhyun/finbot/internal/session"
	"github.com/jwhyun/finbot/internal/tasks"
	"github.com/jwhyun/finbot/internal/users"
)

const providerTimeout = 60 * time.Second

// loadConfig reads the config file, applies FINBOT_* overrides and
// validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// createProviderFromConfig builds the configured LLM provider wrapped
// with retry and timeout handling.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}
	return llm.NewRetryProvider(provider, providerTimeout), nil
}

// createEmbedderFromConfig builds the embedder matching the configured
// provider.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}
}

// app holds the wired chatbot and the resources it owns.
type app struct {
	cfg      *config.Config
	db       *db.DB
	sessions *session.Store
	index    *products.ChromemIndex
	service  *chat.Service
	queue    *tasks.Queue
}

// buildApp opens the data stores and wires the full chat pipeline. The
// queue is created but not started; callers that serve async turns start
// it themselves.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", cfg.DataDir, err)
	}

	d, err := db.Open(filepath.Join(cfg.DataDir, "finbot.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sessions, err := session.Open(
		filepath.Join(cfg.DataDir, "sessions"),
		time.Duration(cfg.Session.TTLSeconds)*time.Second)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		sessions.Close()
		d.Close()
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		sessions.Close()
		d.Close()
		return nil, err
	}

	index, err := products.NewChromemIndex(embedder, cfg.Search.CandidateCap)
	if err != nil {
		sessions.Close()
		d.Close()
		return nil, fmt.Errorf("creating product index: %w", err)
	}
	if err := index.Load(ctx, cfg.DataDir); err != nil {
		log.Printf("finbot: product index not loaded (run 'finbot index' to build it): %v", err)
	}

	classifier, err := intent.NewClassifier(cfg, provider)
	if err != nil {
		sessions.Close()
		d.Close()
		return nil, err
	}

	dialogue := profile.NewOrchestrator(sessions, users.NewStore(d))
	builder := query.NewBuilder(provider, cfg.RouterModel, cfg.Search.TopK, cfg.Search.MaxTopK)
	router := agent.NewRouter(classifier, provider, cfg.Model,
		index, products.NewSecurityStore(d), builder)

	queue := tasks.NewQueue(d, cfg.Tasks.Workers)
	service := chat.NewService(dialogue, router, chat.NewMessageStore(d), queue, cfg.Tasks.Sync)

	return &app{
		cfg:      cfg,
		db:       d,
		sessions: sessions,
		index:    index,
		service:  service,
		queue:    queue,
	}, nil
}

// Close releases the app's resources in reverse wiring order.
func (a *app) Close() {
	if err := a.sessions.Close(); err != nil {
		log.Printf("finbot: closing session store: %v", err)
	}
	if err := a.db.Close(); err != nil {
		log.Printf("finbot: closing database: %v", err)
	}
}
