package usecase

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/advotac/legal-rag/internal/core/domain"
)

func layeredHit(layer domain.Layer, section string) domain.ScoredHit {
	return domain.ScoredHit{
		Score: 0.9,
		Hit: domain.Hit{
			Score:      0.9,
			Collection: "acts",
			Payload: domain.Payload{
				LayerTag:      string(layer),
				ActTitle:      "Some Act",
				SectionNumber: section,
				Text:          "text of " + section,
			},
		},
	}
}

func defaultWeights() layerWeights {
	return layerWeights{L1: 0.15, L2: 0.55}
}

func TestBlendLayerCountsSumToTopK(t *testing.T) {
	// Plenty of material in every layer, so the rounding reconciliation is
	// fully observable.
	var scored []domain.ScoredHit
	for i := 0; i < 20; i++ {
		scored = append(scored,
			layeredHit(domain.LayerL1, fmt.Sprintf("l1-%d", i)),
			layeredHit(domain.LayerL2, fmt.Sprintf("l2-%d", i)),
			layeredHit(domain.LayerL3, fmt.Sprintf("l3-%d", i)),
		)
	}

	for topK := 1; topK <= 12; topK++ {
		blended := blendByLayer(scored, topK, defaultWeights())
		if len(blended) != topK {
			t.Fatalf("topK=%d: got %d hits", topK, len(blended))
		}
		counts := map[domain.Layer]int{}
		for _, h := range blended {
			counts[domain.ClassifyLayer(h)]++
		}
		if counts[domain.LayerL1]+counts[domain.LayerL2]+counts[domain.LayerL3] != topK {
			t.Fatalf("topK=%d: layer counts do not reconcile: %v", topK, counts)
		}
	}
}

func TestBlendBackfillsFromNextLayer(t *testing.T) {
	// Only L1 hits available: targets for L3/L2 cannot be met and must be
	// backfilled without exceeding topK.
	var scored []domain.ScoredHit
	for i := 0; i < 10; i++ {
		scored = append(scored, layeredHit(domain.LayerL1, fmt.Sprintf("h-%d", i)))
	}

	blended := blendByLayer(scored, 5, defaultWeights())
	if len(blended) != 5 {
		t.Fatalf("expected 5 backfilled hits, got %d", len(blended))
	}
	for i, h := range blended {
		if h.Payload.SectionNumber != fmt.Sprintf("h-%d", i) {
			t.Fatalf("backfill must preserve incoming order, got %s at %d", h.Payload.SectionNumber, i)
		}
	}
}

func TestBlendPutsL3First(t *testing.T) {
	scored := []domain.ScoredHit{
		layeredHit(domain.LayerL1, "heading"),
		layeredHit(domain.LayerL3, "clause"),
		layeredHit(domain.LayerL2, "section"),
	}
	blended := blendByLayer(scored, 3, defaultWeights())
	if len(blended) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(blended))
	}
	if domain.ClassifyLayer(blended[0]) != domain.LayerL3 {
		t.Fatalf("expected L3 first, got %s", domain.ClassifyLayer(blended[0]))
	}
}

func TestBlendEmptyInput(t *testing.T) {
	if out := blendByLayer(nil, 5, defaultWeights()); len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}

func TestBuildContextBucketsGroupsByLayer(t *testing.T) {
	hits := []domain.Hit{
		layeredHit(domain.LayerL3, "3a").Hit,
		layeredHit(domain.LayerL2, "2a").Hit,
		layeredHit(domain.LayerL1, "1a").Hit,
	}
	buckets := buildContextBuckets(hits, 7500)
	if buckets.L1 == "" || buckets.L2 == "" || buckets.L3 == "" {
		t.Fatalf("expected all three buckets populated: %+v", buckets)
	}
}

func TestBuildContextBucketsStopsAllLayersOnBudget(t *testing.T) {
	hits := []domain.Hit{
		layeredHit(domain.LayerL3, "first").Hit,
		layeredHit(domain.LayerL2, "second").Hit,
		layeredHit(domain.LayerL1, "third").Hit,
	}
	firstBlock := "[[META]] " + metaLine(hits[0].Payload) + "\n[[TEXT]] " + hits[0].Payload.Text + "\n"

	buckets := buildContextBuckets(hits, len(firstBlock))
	if buckets.L3 == "" {
		t.Fatalf("first block fits the budget and must be kept")
	}
	// The second block overflows; serialization stops for every layer,
	// including the small third block that would still have fit.
	if buckets.L2 != "" || buckets.L1 != "" {
		t.Fatalf("expected stop-all truncation, got %+v", buckets)
	}
}

func TestBuildContextBucketsSkipsBlankPayloads(t *testing.T) {
	buckets := buildContextBuckets([]domain.Hit{{Score: 0.9, Collection: "acts_L2"}}, 7500)
	if !buckets.Empty() {
		t.Fatalf("expected empty buckets for blank payloads, got %+v", buckets)
	}
}

func TestBlendingIsDeterministic(t *testing.T) {
	var scored []domain.ScoredHit
	for i := 0; i < 30; i++ {
		layer := []domain.Layer{domain.LayerL1, domain.LayerL2, domain.LayerL3}[i%3]
		scored = append(scored, layeredHit(layer, fmt.Sprintf("s-%d", i)))
	}

	first := blendByLayer(scored, 7, defaultWeights())
	second := blendByLayer(scored, 7, defaultWeights())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("blending must be deterministic")
	}

	b1 := buildContextBuckets(first, 7500)
	b2 := buildContextBuckets(second, 7500)
	if b1 != b2 {
		t.Fatalf("bucket serialization must be deterministic")
	}
}
