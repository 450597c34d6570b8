package triage

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// DisorderMatch pairs a disorder with its symptom-overlap percentage.
type DisorderMatch struct {
	Disorder string  `json:"disorder"`
	Percent  float64 `json:"percent"`
}

// Scorer ranks candidate disorders by how many of the reported symptoms
// indicate them. It is an explainable heuristic over edge counts, not a
// classifier, and its output must always be presented with a
// non-diagnostic disclaimer.
type Scorer struct {
	graph  GraphStore
	logger *zap.Logger
}

// NewScorer creates a scorer over the knowledge graph.
func NewScorer(graph GraphStore, logger *zap.Logger) *Scorer {
	return &Scorer{graph: graph, logger: logger}
}

// Score returns disorder matches sorted by percentage descending, ties
// broken by name ascending. An empty symptom set, or one correlating to no
// disorder, yields an empty result and a nil error: the caller treats that
// as insufficient evidence.
func (s *Scorer) Score(ctx context.Context, symptoms []string) ([]DisorderMatch, error) {
	if len(symptoms) == 0 || s.graph == nil {
		return nil, nil
	}

	counts, err := s.graph.DisordersForSymptoms(ctx, symptoms)
	if err != nil {
		return nil, err
	}

	total := len(symptoms)
	if total < 1 {
		total = 1
	}

	matches := make([]DisorderMatch, 0, len(counts))
	for _, c := range counts {
		pct := float64(c.Count) / float64(total) * 100
		if pct > 100 {
			pct = 100
		}
		matches = append(matches, DisorderMatch{Disorder: c.Name, Percent: pct})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Percent != matches[j].Percent {
			return matches[i].Percent > matches[j].Percent
		}
		return matches[i].Disorder < matches[j].Disorder
	})
	return matches, nil
}
