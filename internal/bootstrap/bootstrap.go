package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/advotac/legal-rag/internal/config"
	"github.com/advotac/legal-rag/internal/core/ports"
	"github.com/advotac/legal-rag/internal/core/usecase"
	"github.com/advotac/legal-rag/internal/infrastructure/llm/azure"
	"github.com/advotac/legal-rag/internal/infrastructure/resilience"
	"github.com/advotac/legal-rag/internal/infrastructure/vector/qdrant"
	"github.com/advotac/legal-rag/internal/observability/logging"
	"github.com/advotac/legal-rag/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.HTTPServerMetrics

	AnswerUC ports.AnswerService
	VectorDB *qdrant.Client
}

func New(cfg config.Config) (*App, error) {
	if cfg.AzureOpenAIEndpoint == "" || cfg.AzureOpenAIAPIKey == "" {
		return nil, fmt.Errorf("azure openai endpoint and api key are required")
	}
	if len(cfg.QdrantCollections) == 0 {
		return nil, fmt.Errorf("at least one qdrant collection is required")
	}

	logger := logging.New("legal-rag-api", cfg.LogLevel)
	serverMetrics := metrics.NewHTTPServerMetrics("legal-rag-api")

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	llm := azure.New(azure.Config{
		Endpoint:          cfg.AzureOpenAIEndpoint,
		APIKey:            cfg.AzureOpenAIAPIKey,
		APIVersion:        cfg.AzureOpenAIAPIVersion,
		ChatDeployment:    cfg.AzureChatDeployment,
		EmbedDeployment:   cfg.AzureEmbedDeployment,
		RequestTimeout:    time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.LLMRequestsPerSecond,
		Burst:             cfg.LLMBurst,
	}, executor)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantAPIKey)

	answerUC := usecase.NewAnswerUseCase(llm, vectorDB, llm, usecase.Config{
		Collections:         cfg.QdrantCollections,
		ContextCharBudget:   cfg.ContextCharBudget,
		MaxRerankCandidates: cfg.RerankCandidates,
		RerankTextLimit:     cfg.RerankTextLimit,
		HeuristicAlpha:      cfg.HeuristicAlpha,
		HeuristicBeta:       cfg.HeuristicBeta,
		HeuristicGamma:      cfg.HeuristicGamma,
		LayerWeightL1:       cfg.LayerWeightL1,
		LayerWeightL2:       cfg.LayerWeightL2,
	}, logger, serverMetrics.Pipeline())

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  serverMetrics,
		AnswerUC: answerUC,
		VectorDB: vectorDB,
	}, nil
}

// HealthCheck probes the vector backend; the model backend has no free
// endpoint worth hitting on every readiness poll.
func (a *App) HealthCheck(ctx context.Context) error {
	return a.VectorDB.HealthCheck(ctx)
}
