package usecase

import (
	"math"
	"strings"

	"github.com/advotac/legal-rag/internal/core/domain"
)

// layerWeights drive the per-layer share of the final context set.
// L3 takes the remainder so the counts always sum to exactly topK.
type layerWeights struct {
	L1 float64
	L2 float64
}

// blendByLayer selects a layer-proportioned subset of the reranked hits,
// preserving incoming rank order within each layer. A layer short of its
// target is backfilled from the next layer in priority order L3, L2, L1.
func blendByLayer(scored []domain.ScoredHit, topK int, w layerWeights) []domain.Hit {
	if len(scored) == 0 || topK <= 0 {
		return nil
	}

	perLayer := make(map[domain.Layer][]domain.Hit, 3)
	for _, sh := range scored {
		layer := domain.ClassifyLayer(sh.Hit)
		perLayer[layer] = append(perLayer[layer], sh.Hit)
	}

	l1n := int(math.Round(float64(topK) * w.L1))
	l2n := int(math.Round(float64(topK) * w.L2))
	l3n := topK - l1n - l2n
	if l3n < 0 {
		l3n = 0
	}

	targets := map[domain.Layer]int{
		domain.LayerL1: l1n,
		domain.LayerL2: l2n,
		domain.LayerL3: l3n,
	}

	priority := []domain.Layer{domain.LayerL3, domain.LayerL2, domain.LayerL1}

	blended := make([]domain.Hit, 0, topK)
	taken := make(map[domain.Layer]int, 3)
	for _, layer := range priority {
		n := targets[layer]
		if n > len(perLayer[layer]) {
			n = len(perLayer[layer])
		}
		blended = append(blended, perLayer[layer][:n]...)
		taken[layer] = n
	}

	for _, layer := range priority {
		if len(blended) >= topK {
			break
		}
		for _, h := range perLayer[layer][taken[layer]:] {
			blended = append(blended, h)
			if len(blended) >= topK {
				break
			}
		}
	}

	if len(blended) > topK {
		blended = blended[:topK]
	}
	return blended
}

type contextBuckets struct {
	L1 string
	L2 string
	L3 string
}

func (b contextBuckets) Empty() bool {
	return b.L1 == "" && b.L2 == "" && b.L3 == ""
}

const blockSeparator = "\n---\n"

// buildContextBuckets serializes accepted hits into metadata+text blocks
// grouped per layer under one shared character budget. Once a block would
// cross the budget, serialization stops for every layer, not just the
// over-budget one.
func buildContextBuckets(hits []domain.Hit, budget int) contextBuckets {
	var l1, l2, l3 []string
	total := 0
	for _, h := range hits {
		meta := metaLine(h.Payload)
		if meta == "" && h.Payload.Text == "" {
			continue
		}
		block := "[[META]] " + meta + "\n[[TEXT]] " + h.Payload.Text + "\n"
		if total+len(block) > budget {
			break
		}
		switch domain.ClassifyLayer(h) {
		case domain.LayerL3:
			l3 = append(l3, block)
		case domain.LayerL2:
			l2 = append(l2, block)
		default:
			l1 = append(l1, block)
		}
		total += len(block)
	}
	return contextBuckets{
		L1: strings.Join(l1, blockSeparator),
		L2: strings.Join(l2, blockSeparator),
		L3: strings.Join(l3, blockSeparator),
	}
}
