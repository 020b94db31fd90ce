package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/advotac/legal-rag/internal/core/domain"
)

type rerankItem struct {
	ID    int          `json:"id"`
	Layer domain.Layer `json:"layer"`
	Meta  string       `json:"meta"`
	Text  string       `json:"text"`
}

type rerankRow struct {
	ID     int     `json:"id"`
	Layer  string  `json:"layer"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// modelRerank asks the model to score candidates against the question. The
// result is score-descending, or nil on any error or unparseable output so
// the caller can fall back to the heuristic path. Returned indices are
// validated against the submitted candidates; malformed rows are discarded,
// never fatal.
func (uc *AnswerUseCase) modelRerank(ctx context.Context, query string, pool []domain.Hit) []domain.ScoredHit {
	if len(pool) == 0 {
		return nil
	}

	candidates := pool
	if len(candidates) > uc.cfg.MaxRerankCandidates {
		candidates = candidates[:uc.cfg.MaxRerankCandidates]
	}

	items := make([]rerankItem, 0, len(candidates))
	for i, h := range candidates {
		items = append(items, rerankItem{
			ID:    i,
			Layer: domain.ClassifyLayer(h),
			Meta:  metaLine(h.Payload),
			Text:  truncate(h.Payload.Text, uc.cfg.RerankTextLimit),
		})
	}

	chunksJSON, err := json.Marshal(items)
	if err != nil {
		uc.logger.Warn("marshal rerank candidates", "error", err)
		return nil
	}

	raw, err := uc.completer.CompleteJSON(ctx, rerankSystemPrompt, buildRerankPrompt(query, string(chunksJSON)))
	if err != nil {
		uc.logger.Warn("model rerank call failed", "error", err)
		return nil
	}

	var rows []rerankRow
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &rows); err != nil {
		uc.logger.Warn("model rerank returned unparseable output", "error", err)
		return nil
	}

	scored := make([]domain.ScoredHit, 0, len(rows))
	for _, row := range rows {
		if row.ID < 0 || row.ID >= len(candidates) {
			continue
		}
		scored = append(scored, domain.ScoredHit{Score: row.Score, Hit: candidates[row.ID]})
	}
	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// metaLine assembles the provenance line shown to the model and serialized
// into context blocks.
func metaLine(p domain.Payload) string {
	parts := make([]string, 0, 4)
	if p.ActTitle != "" {
		parts = append(parts, p.ActTitle)
	}
	if p.SectionNumber != "" {
		parts = append(parts, "Section "+p.SectionNumber)
	}
	if p.SectionHeading != "" {
		parts = append(parts, p.SectionHeading)
	}
	if p.Breadcrumbs != "" {
		parts = append(parts, p.Breadcrumbs)
	}
	return strings.Join(parts, " | ")
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
