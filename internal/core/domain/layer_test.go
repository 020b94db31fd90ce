package domain

import "testing"

func TestClassifyLayerExplicitTagWins(t *testing.T) {
	hit := Hit{
		Collection: "advotac_acts_L3",
		Payload: Payload{
			LayerTag:      "l1",
			SectionNumber: "302",
			Clause:        "(a)",
		},
	}
	if got := ClassifyLayer(hit); got != LayerL1 {
		t.Fatalf("expected explicit tag to win, got %s", got)
	}
}

func TestClassifyLayerCollectionSuffix(t *testing.T) {
	hit := Hit{Collection: "advotac_acts_L2"}
	if got := ClassifyLayer(hit); got != LayerL2 {
		t.Fatalf("expected L2 from collection suffix, got %s", got)
	}
}

func TestClassifyLayerStructuralHeuristics(t *testing.T) {
	cases := []struct {
		name    string
		payload Payload
		want    Layer
	}{
		{"clause field", Payload{Clause: "(b)", SectionNumber: "5"}, LayerL3},
		{"sub section field", Payload{SubSection: "2"}, LayerL3},
		{"clause marker in text", Payload{Text: "as provided in (1) above"}, LayerL3},
		{"section only", Payload{SectionNumber: "302"}, LayerL2},
		{"bare heading", Payload{ActTitle: "Indian Penal Code"}, LayerL1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyLayer(Hit{Collection: "central_acts", Payload: tc.payload}); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassifyLayerDeterministic(t *testing.T) {
	hit := Hit{Collection: "central_acts_v2", Payload: Payload{SectionNumber: "65B", Text: "certificate under sub-section (4)"}}
	first := ClassifyLayer(hit)
	for i := 0; i < 5; i++ {
		if got := ClassifyLayer(hit); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestInvalidCollectionSuffixIgnored(t *testing.T) {
	hit := Hit{Collection: "acts_v2", Payload: Payload{SectionNumber: "10"}}
	if got := ClassifyLayer(hit); got != LayerL2 {
		t.Fatalf("expected heuristic L2, got %s", got)
	}
}

func TestNewSourceViewTruncatesSnippet(t *testing.T) {
	long := make([]rune, 1200)
	for i := range long {
		long[i] = 'x'
	}
	view := NewSourceView(Hit{Score: 0.9, Payload: Payload{Text: string(long)}})
	if len([]rune(view.Snippet)) != 600 {
		t.Fatalf("expected 600-rune snippet, got %d", len([]rune(view.Snippet)))
	}
}
