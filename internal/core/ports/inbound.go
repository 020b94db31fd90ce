package ports

import (
	"context"

	"github.com/advotac/legal-rag/internal/core/domain"
)

// AnswerRequest carries one question through the pipeline.
type AnswerRequest struct {
	Query     string
	TopK      int
	Threshold float64
	Validate  bool
}

// AnswerService is the inbound contract for the answering pipeline.
type AnswerService interface {
	AnswerQuery(ctx context.Context, req AnswerRequest) (*domain.AnswerResponse, error)
}
