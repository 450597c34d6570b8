package triage

import "strings"

// Extractor matches free text against the vocabulary. Matching is
// case-insensitive substring containment; overlapping matches both fire
// ("panic" and "panic attacks" can match the same input), which mirrors
// the controlled-vocabulary behavior this engine inherits.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor creates an extractor over a vocabulary snapshot.
func NewExtractor(vocab *Vocabulary) *Extractor {
	return &Extractor{vocab: vocab}
}

// FindSymptoms returns every vocabulary symptom contained in the text,
// sorted by name. Pure function of (text, vocabulary).
func (e *Extractor) FindSymptoms(text string) []string {
	return matchNames(text, e.vocab.Symptoms())
}

// FindDisorders returns every vocabulary disorder contained in the text,
// sorted by name.
func (e *Extractor) FindDisorders(text string) []string {
	return matchNames(text, e.vocab.Disorders())
}

func matchNames(text string, names []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, name := range names {
		if strings.Contains(lower, strings.ToLower(name)) {
			found = append(found, name)
		}
	}
	return found
}
