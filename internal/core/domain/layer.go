package domain

import (
	"regexp"
	"strings"
)

// Layer tags a hit with its position in the statute hierarchy.
type Layer string

const (
	LayerL1 Layer = "L1" // part/chapter titles
	LayerL2 Layer = "L2" // sections, the main provisions
	LayerL3 Layer = "L3" // clauses and sub-sections
)

func (l Layer) Valid() bool {
	return l == LayerL1 || l == LayerL2 || l == LayerL3
}

var clauseMarkerRe = regexp.MustCompile(`\([0-9A-Za-z]+\)`)

// ClassifyLayer resolves the hierarchy layer of a hit. Resolution order is
// fixed: an explicit layer tag in the payload wins, then a per-layer
// collection name suffix, then structural heuristics over the payload.
// The function is pure; identical input always yields the same layer.
func ClassifyLayer(h Hit) Layer {
	if tag := Layer(strings.ToUpper(strings.TrimSpace(h.Payload.LayerTag))); tag.Valid() {
		return tag
	}

	if idx := strings.LastIndex(h.Collection, "_"); idx >= 0 {
		if suffix := Layer(strings.ToUpper(h.Collection[idx+1:])); suffix.Valid() {
			return suffix
		}
	}

	if h.Payload.Clause != "" || h.Payload.SubSection != "" || clauseMarkerRe.MatchString(h.Payload.Text) {
		return LayerL3
	}
	if h.Payload.SectionNumber != "" {
		return LayerL2
	}
	return LayerL1
}
