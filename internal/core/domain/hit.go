package domain

// Payload is the provenance record attached to an indexed statute chunk.
// Known fields are typed; anything else the index sends lands in Extra so
// schema drift never breaks classification or serialization.
type Payload struct {
	ActTitle       string `json:"act_title,omitempty"`
	SectionNumber  string `json:"section_number,omitempty"`
	SectionHeading string `json:"section_heading,omitempty"`
	Breadcrumbs    string `json:"breadcrumbs,omitempty"`
	Clause         string `json:"clause,omitempty"`
	SubSection     string `json:"sub_section,omitempty"`
	Text           string `json:"text,omitempty"`

	// LayerTag carries an explicit layer marker from the index, if any.
	LayerTag string `json:"layer,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Hit is one retrieved candidate. It is never mutated after creation;
// reranking wraps hits in ScoredHit values instead.
type Hit struct {
	Score      float64 `json:"score"`
	Collection string  `json:"collection"`
	Payload    Payload `json:"payload"`
}

// ScoredHit pairs a reranker-assigned score with the untouched hit.
// Heuristic scores are a weighted composite; model scores are the model's
// asserted relevance in [0,1]. Callers must not mix the two scales.
type ScoredHit struct {
	Score float64 `json:"score"`
	Hit   Hit     `json:"hit"`
}
