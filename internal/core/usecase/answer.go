package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/advotac/legal-rag/internal/core/domain"
	"github.com/advotac/legal-rag/internal/core/ports"
)

// Config holds the tunable pipeline parameters. Zero values are replaced by
// the defaults the index was calibrated against.
type Config struct {
	Collections []string

	ContextCharBudget   int
	MaxRerankCandidates int
	RerankTextLimit     int

	HeuristicAlpha float64
	HeuristicBeta  float64
	HeuristicGamma float64

	LayerWeightL1 float64
	LayerWeightL2 float64
}

func (c Config) normalize() Config {
	out := c
	if out.ContextCharBudget <= 0 {
		out.ContextCharBudget = 7500
	}
	if out.MaxRerankCandidates <= 0 {
		out.MaxRerankCandidates = 20
	}
	if out.RerankTextLimit <= 0 {
		out.RerankTextLimit = 1000
	}
	if out.HeuristicAlpha <= 0 {
		out.HeuristicAlpha = 0.65
	}
	if out.HeuristicBeta <= 0 {
		out.HeuristicBeta = 0.25
	}
	if out.HeuristicGamma <= 0 {
		out.HeuristicGamma = 0.10
	}
	if out.LayerWeightL1 <= 0 {
		out.LayerWeightL1 = 0.15
	}
	if out.LayerWeightL2 <= 0 {
		out.LayerWeightL2 = 0.55
	}
	return out
}

// AnswerUseCase orchestrates the full retrieval and generation pipeline:
// expand, embed, search, rerank, filter, blend, generate, validate. Each run
// is stateless apart from this read-only configuration.
type AnswerUseCase struct {
	embedder  ports.Embedder
	searcher  ports.VectorSearcher
	completer ports.ChatCompleter
	cfg       Config
	logger    *slog.Logger
	metrics   Metrics
}

func NewAnswerUseCase(
	embedder ports.Embedder,
	searcher ports.VectorSearcher,
	completer ports.ChatCompleter,
	cfg Config,
	logger *slog.Logger,
	metrics Metrics,
) *AnswerUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &AnswerUseCase{
		embedder:  embedder,
		searcher:  searcher,
		completer: completer,
		cfg:       cfg.normalize(),
		logger:    logger,
		metrics:   metrics,
	}
}

// AnswerQuery executes the pipeline end to end and returns one structured
// response. Embedding and search failures are fatal; the rerank and
// validation stages degrade instead of failing.
func (uc *AnswerUseCase) AnswerQuery(ctx context.Context, req ports.AnswerRequest) (*domain.AnswerResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("query must not be empty"))
	}
	if req.TopK <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("top_k must be greater than zero"))
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("threshold must be between 0 and 1"))
	}

	expanded := uc.timedExpand(ctx, query)

	vector, err := uc.timedEmbed(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "embed query", err)
	}

	pool, err := uc.searchCollections(ctx, vector, req.TopK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "vector search", err)
	}

	scored := uc.rerank(ctx, query, pool)

	kept := filterByThreshold(scored, req.Threshold)
	if len(kept) == 0 {
		// A working ranking below threshold beats no ranking at all.
		kept = scored
	}

	blended := blendByLayer(kept, req.TopK, layerWeights{L1: uc.cfg.LayerWeightL1, L2: uc.cfg.LayerWeightL2})
	if len(blended) == 0 {
		uc.metrics.NoContext()
		uc.logger.Info("no candidates survived filtering", "query", query)
		return &domain.AnswerResponse{
			Query:           query,
			Answer:          noContextAnswer,
			ExpandedQueries: expanded,
			Sources:         sourceViews(topHits(pool, req.TopK)),
		}, nil
	}

	buckets := buildContextBuckets(blended, uc.cfg.ContextCharBudget)
	if buckets.Empty() {
		// Hits exist but nothing was serializable. Answer from general
		// statutory knowledge, flagged by the prompt; validation against
		// empty context is meaningless and skipped.
		answer, err := uc.completer.Complete(ctx, fallbackAnswerSystemPrompt, buildFallbackAnswerPrompt(query))
		if err != nil {
			return nil, domain.WrapError(domain.ErrGeneration, "generate fallback answer", err)
		}
		uc.metrics.SourcesReturned(len(blended))
		return &domain.AnswerResponse{
			Query:           query,
			Answer:          answer,
			ExpandedQueries: expanded,
			Sources:         sourceViews(blended),
		}, nil
	}

	answer, err := uc.timedGenerate(ctx, query, buckets)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "generate answer", err)
	}

	validation := ""
	if req.Validate {
		validation = uc.validateCitations(ctx, answer, buckets)
	}

	uc.metrics.SourcesReturned(len(blended))
	return &domain.AnswerResponse{
		Query:           query,
		Answer:          answer,
		ExpandedQueries: expanded,
		Sources:         sourceViews(blended),
		Validation:      validation,
	}, nil
}

// searchCollections fans one query vector out to every configured collection
// in parallel. A failing collection is logged and skipped; only all
// collections failing (or none configured) is an error. The merged pool is
// score-descending.
func (uc *AnswerUseCase) searchCollections(ctx context.Context, vector []float32, topK int) ([]domain.Hit, error) {
	if len(uc.cfg.Collections) == 0 {
		return nil, errors.New("no collections configured")
	}

	// Over-fetch per collection so reranking and filtering have material.
	limit := topK * 8
	if limit < 15 {
		limit = 15
	}

	start := time.Now()
	var (
		mu       sync.Mutex
		pool     []domain.Hit
		failures int
		lastErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, collection := range uc.cfg.Collections {
		collection := collection
		g.Go(func() error {
			hits, err := uc.searcher.Search(gctx, collection, vector, limit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Partial degradation beats total failure; the error must
				// not cancel sibling searches.
				uc.logger.Warn("collection search failed", "collection", collection, "error", err)
				uc.metrics.CollectionSearchFailure(collection)
				failures++
				lastErr = err
				return nil
			}
			pool = append(pool, hits...)
			return nil
		})
	}
	_ = g.Wait()
	uc.metrics.ObserveStage("search", time.Since(start).Seconds())

	if failures == len(uc.cfg.Collections) {
		return nil, fmt.Errorf("all %d collections failed: %w", failures, lastErr)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})
	return pool, nil
}

// rerank tries the model reranker and silently degrades to the heuristic one.
func (uc *AnswerUseCase) rerank(ctx context.Context, query string, pool []domain.Hit) []domain.ScoredHit {
	start := time.Now()
	defer func() {
		uc.metrics.ObserveStage("rerank", time.Since(start).Seconds())
	}()

	if scored := uc.modelRerank(ctx, query, pool); len(scored) > 0 {
		return scored
	}
	if len(pool) > 0 {
		uc.metrics.RerankFallback()
		uc.logger.Warn("model rerank unavailable, using heuristic reranker")
	}
	return uc.heuristicRerank(query, pool)
}

// validateCitations is purely advisory: a validator failure degrades to an
// inline marker string, never failing the request.
func (uc *AnswerUseCase) validateCitations(ctx context.Context, answer string, buckets contextBuckets) string {
	verdict, err := uc.completer.Complete(ctx, validatorSystemPrompt, buildValidationPrompt(answer, buckets))
	if err != nil {
		uc.logger.Warn("citation validation failed", "error", err)
		return fmt.Sprintf("(validator error: %v)", err)
	}
	return verdict
}

func (uc *AnswerUseCase) timedExpand(ctx context.Context, query string) []string {
	start := time.Now()
	expanded := uc.expandQueries(ctx, query)
	uc.metrics.ObserveStage("expand", time.Since(start).Seconds())
	return expanded
}

func (uc *AnswerUseCase) timedEmbed(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	vector, err := uc.embedder.EmbedQuery(ctx, query)
	uc.metrics.ObserveStage("embed", time.Since(start).Seconds())
	if err == nil && len(vector) == 0 {
		return nil, errors.New("embedding service returned no vector")
	}
	return vector, err
}

func (uc *AnswerUseCase) timedGenerate(ctx context.Context, query string, buckets contextBuckets) (string, error) {
	start := time.Now()
	answer, err := uc.completer.Complete(ctx, answerSystemPrompt, buildAnswerPrompt(query, buckets))
	uc.metrics.ObserveStage("generate", time.Since(start).Seconds())
	return answer, err
}

// filterByThreshold keeps hits whose raw vector score clears the threshold.
// The reranker-assigned score still decides ordering.
func filterByThreshold(scored []domain.ScoredHit, threshold float64) []domain.ScoredHit {
	out := make([]domain.ScoredHit, 0, len(scored))
	for _, sh := range scored {
		if sh.Hit.Score >= threshold {
			out = append(out, sh)
		}
	}
	return out
}

func topHits(pool []domain.Hit, topK int) []domain.Hit {
	if len(pool) <= topK {
		return pool
	}
	return pool[:topK]
}

func sourceViews(hits []domain.Hit) []domain.SourceView {
	out := make([]domain.SourceView, 0, len(hits))
	for _, h := range hits {
		out = append(out, domain.NewSourceView(h))
	}
	return out
}
