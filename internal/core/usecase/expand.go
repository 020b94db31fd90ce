package usecase

import (
	"context"
	"encoding/json"
	"strings"
)

const maxExpandedQueries = 5

// expandQueries asks the model for 3-5 retrieval-oriented rewrites of the
// question. Any failure is soft: the original query comes back alone, so the
// result is never empty. Expansions are surfaced to the caller but do not
// widen retrieval.
func (uc *AnswerUseCase) expandQueries(ctx context.Context, query string) []string {
	raw, err := uc.completer.CompleteJSON(ctx, expansionSystemPrompt, query)
	if err != nil {
		uc.logger.Warn("query expansion failed", "error", err)
		return []string{query}
	}

	var rewrites []string
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &rewrites); err != nil {
		uc.logger.Warn("query expansion returned unparseable output", "error", err)
		return []string{query}
	}

	out := make([]string, 0, maxExpandedQueries)
	for _, q := range rewrites {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == maxExpandedQueries {
			break
		}
	}
	if len(out) == 0 {
		return []string{query}
	}
	return out
}

// extractJSONArray trims prose or code fences around a JSON list, the usual
// failure mode of models asked for bare JSON.
func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
