package ports

import (
	"context"

	"github.com/advotac/legal-rag/internal/core/domain"
)

// Embedder converts query text into an index-compatible vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher queries one named collection with a vector. Implementations
// return hits sorted by raw similarity score, highest first.
type VectorSearcher interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.Hit, error)
}

// ChatCompleter is the single generative-model boundary. Query expansion,
// model reranking, answer generation, and citation validation all go through
// it, differing only in prompt and expected output shape.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// CompleteJSON requests a deterministic completion for structured
	// (JSON list) outputs.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CreditLedger is consumed from the external billing layer. The answer
// pipeline itself never touches credits; only the serving adapter calls
// these around a pipeline run, and tests run with NopCreditLedger.
type CreditLedger interface {
	EnsureAvailable(ctx context.Context, userID, taskKind string) (int, error)
	Spend(ctx context.Context, userID, taskKind string, cost int) error
}

// NopCreditLedger satisfies CreditLedger without gating anything.
type NopCreditLedger struct{}

func (NopCreditLedger) EnsureAvailable(context.Context, string, string) (int, error) { return 0, nil }

func (NopCreditLedger) Spend(context.Context, string, string, int) error { return nil }
