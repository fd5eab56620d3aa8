package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/upb/placement-rag/config"
	"github.com/upb/placement-rag/internal/observability"
	"github.com/upb/placement-rag/repositories"
	"github.com/upb/placement-rag/repositories/postgres"
	"github.com/upb/placement-rag/services/answer"
	"github.com/upb/placement-rag/services/embedding"
	"github.com/upb/placement-rag/services/providers"
	"github.com/upb/placement-rag/services/providers/gemini"
	"github.com/upb/placement-rag/services/providers/openai"
	"github.com/upb/placement-rag/services/retrieval"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repositories *repositories.Repositories
	TxManager    repositories.TransactionManager

	// Providers
	ProviderRegistry *providers.Registry
	Embedder         providers.Embedder
	Generator        providers.Generator

	// Services
	Embedding *embedding.Service
	Retrieval *retrieval.Service
	Answer    *answer.Service
}

// NewStoreDependencies connects to the database and creates the repositories.
// Used by commands that never call a provider.
func NewStoreDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NopMetrics{},
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.initRepositories()
	return deps, nil
}

// NewDependencies creates and wires up all application dependencies.
// Metrics are registered on reg; a nil reg disables them.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Dependencies, error) {
	if err := cfg.RequireProviderCredentials(); err != nil {
		return nil, fmt.Errorf("invalid provider configuration: %w", err)
	}

	registry, err := NewProviderRegistry(cfg.Providers, cfg.RAG.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	metrics, err := newMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	deps, err := NewStoreDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.Metrics = metrics

	if err := deps.initProviders(registry); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}
	deps.initServices()

	logger.Info("all dependencies initialized successfully",
		zap.String("embedding_provider", deps.Embedder.Name()),
		zap.String("generation_provider", deps.Generator.Name()))
	return deps, nil
}

// NewProviderRegistry registers every provider that has an API key.
// dimensions is forwarded to providers that can shorten their embeddings.
func NewProviderRegistry(cfg config.ProvidersConfig, dimensions int) (*providers.Registry, error) {
	registry := providers.NewRegistry()

	if cfg.Gemini.APIKey != "" {
		client := gemini.NewClient(providers.ProviderConfig{
			APIKey:         cfg.Gemini.APIKey,
			BaseURL:        cfg.Gemini.BaseURL,
			EmbeddingModel: cfg.Gemini.EmbeddingModel,
			ChatModel:      cfg.Gemini.ChatModel,
			Timeout:        cfg.Gemini.Timeout,
		})
		if err := registerBoth(registry, client); err != nil {
			return nil, err
		}
	}

	if cfg.OpenAI.APIKey != "" {
		adapter := openai.NewOpenAIAdapter(providers.ProviderConfig{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			EmbeddingModel: cfg.OpenAI.EmbeddingModel,
			ChatModel:      cfg.OpenAI.ChatModel,
			Timeout:        cfg.OpenAI.Timeout,
		}, dimensions)
		if err := registerBoth(registry, adapter); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

type embedderGenerator interface {
	providers.Embedder
	providers.Generator
}

func registerBoth(registry *providers.Registry, p embedderGenerator) error {
	if err := registry.RegisterEmbedder(p); err != nil {
		return err
	}
	return registry.RegisterGenerator(p)
}

func newMetrics(reg prometheus.Registerer) (observability.Metrics, error) {
	if reg == nil {
		return observability.NopMetrics{}, nil
	}
	return observability.NewPrometheusMetrics(reg)
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	d.Repositories = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.GetTransactionManager()
	d.Logger.Info("repositories initialized")
}

// initProviders selects the configured embedder and generator
func (d *Dependencies) initProviders(registry *providers.Registry) error {
	embedder, err := registry.Embedder(d.Config.Providers.EmbeddingProvider)
	if err != nil {
		return err
	}
	generator, err := registry.Generator(d.Config.Providers.GenerationProvider)
	if err != nil {
		return err
	}

	d.ProviderRegistry = registry
	d.Embedder = embedder
	d.Generator = generator
	d.Logger.Info("providers registered", zap.Strings("providers", registry.ListProviders()))
	return nil
}

// initServices wires the pipeline services
func (d *Dependencies) initServices() {
	cfg := d.Config

	d.Embedding = embedding.NewService(
		d.Repositories.Offers,
		d.Embedder,
		embedding.NewLimiter(cfg.Embedder.RequestInterval),
		d.Metrics,
		embedding.Options{
			Dimensions:     cfg.RAG.Dimensions,
			CountJoinSkips: cfg.Embedder.CountJoinSkips,
		},
		d.Logger.Named("embedder"),
	)

	d.Retrieval = retrieval.NewService(
		d.Repositories,
		d.Embedder,
		d.Metrics,
		retrieval.Options{
			Dimensions: cfg.RAG.Dimensions,
			TopK:       cfg.RAG.TopK,
			MaxTopK:    cfg.RAG.MaxTopK,
		},
		d.Logger.Named("retrieval"),
	)

	d.Answer = answer.NewService(d.Retrieval, d.Generator, d.Metrics, cfg.RAG.ContextMaxChars, d.Logger.Named("answer"))
}

// ProviderNames returns the registered provider names, or nil before providers are wired
func (d *Dependencies) ProviderNames() []string {
	if d.ProviderRegistry == nil {
		return nil
	}
	return d.ProviderRegistry.ListProviders()
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		d.RepoFactory = nil
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
