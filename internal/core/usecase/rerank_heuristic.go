package usecase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/advotac/legal-rag/internal/core/domain"
)

// priorBoostCap bounds the additive statute-family bonus.
const priorBoostCap = 0.35

type statutePrior struct {
	keywords []string
	act      *regexp.Regexp
	boost    float64
}

// statutePriors associate query vocabulary with known statute families.
// Multiple matching rules stack, subject to priorBoostCap.
var statutePriors = []statutePrior{
	{[]string{"admissible", "certificate", "65b", "electronic record"}, regexp.MustCompile(`(?i)indian evidence act`), 0.22},
	{[]string{"intermediary", "safe-harbour", "69a", "79"}, regexp.MustCompile(`(?i)information technology act`), 0.20},
	{[]string{"arrest", "482", "fir quash"}, regexp.MustCompile(`(?i)code of criminal procedure`), 0.18},
	{[]string{"related party", "section 188", "board approval"}, regexp.MustCompile(`(?i)companies act`), 0.16},
	{[]string{"29a", "resolution applicant", "coc", "cirp"}, regexp.MustCompile(`(?i)insolvency and bankruptcy code`), 0.16},
	{[]string{"8(1)", "personal information", "pio"}, regexp.MustCompile(`(?i)right to information act`), 0.16},
}

// heuristicRerank is the deterministic last line of defense when the model
// reranker is unavailable. It blends the pool-normalized vector score, lexical
// token overlap, and statute-family priors. It has no external dependency and
// never fails; ties keep original pool order.
func (uc *AnswerUseCase) heuristicRerank(query string, pool []domain.Hit) []domain.ScoredHit {
	if len(pool) == 0 {
		return nil
	}

	queryTokens := toTokenSet(query)
	priors := activePriors(query)

	maxVec := 0.0
	for _, h := range pool {
		if h.Score > maxVec {
			maxVec = h.Score
		}
	}
	if maxVec <= 0 {
		maxVec = 1
	}

	scored := make([]domain.ScoredHit, 0, len(pool))
	for _, h := range pool {
		vecNorm := h.Score / maxVec
		overlap := tokenOverlap(queryTokens, toTokenSet(overlapText(h.Payload)))
		boost := priorBoostFor(priors, h.Payload.ActTitle)
		combined := uc.cfg.HeuristicAlpha*vecNorm + uc.cfg.HeuristicBeta*overlap + uc.cfg.HeuristicGamma*boost
		scored = append(scored, domain.ScoredHit{Score: combined, Hit: h})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func activePriors(query string) []statutePrior {
	q := strings.ToLower(query)
	var out []statutePrior
	for _, p := range statutePriors {
		for _, kw := range p.keywords {
			if strings.Contains(q, kw) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func priorBoostFor(priors []statutePrior, actTitle string) float64 {
	if actTitle == "" {
		return 0
	}
	boost := 0.0
	for _, p := range priors {
		if p.act.MatchString(actTitle) {
			boost += p.boost
		}
	}
	if boost > priorBoostCap {
		boost = priorBoostCap
	}
	return boost
}

// overlapText concatenates the payload fields that carry query-matchable
// vocabulary.
func overlapText(p domain.Payload) string {
	parts := make([]string, 0, 5)
	for _, s := range []string{p.ActTitle, p.SectionHeading, p.SectionNumber, p.Breadcrumbs, p.Text} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}

func tokenOverlap(query, text map[string]struct{}) float64 {
	if len(query) == 0 || len(text) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := text[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
