package domain

const sourceSnippetLimit = 600

// SourceView is the display-safe projection of a hit. It never carries more
// indexed text than the snippet limit allows.
type SourceView struct {
	Score          float64 `json:"score"`
	Layer          Layer   `json:"layer"`
	Collection     string  `json:"collection,omitempty"`
	ActTitle       string  `json:"act_title,omitempty"`
	SectionNumber  string  `json:"section_number,omitempty"`
	SectionHeading string  `json:"section_heading,omitempty"`
	Breadcrumbs    string  `json:"breadcrumbs,omitempty"`
	Snippet        string  `json:"snippet,omitempty"`
}

// NewSourceView projects a hit for API output, truncating the snippet.
func NewSourceView(h Hit) SourceView {
	snippet := []rune(h.Payload.Text)
	if len(snippet) > sourceSnippetLimit {
		snippet = snippet[:sourceSnippetLimit]
	}
	return SourceView{
		Score:          h.Score,
		Layer:          ClassifyLayer(h),
		Collection:     h.Collection,
		ActTitle:       h.Payload.ActTitle,
		SectionNumber:  h.Payload.SectionNumber,
		SectionHeading: h.Payload.SectionHeading,
		Breadcrumbs:    h.Payload.Breadcrumbs,
		Snippet:        string(snippet),
	}
}

// AnswerResponse is the single structured result of one pipeline run.
type AnswerResponse struct {
	Query           string       `json:"query"`
	Answer          string       `json:"answer"`
	ExpandedQueries []string     `json:"expanded_queries"`
	Sources         []SourceView `json:"sources"`
	Validation      string       `json:"validation,omitempty"`
}
