package triage

import (
	"context"
	"sort"

	"github.com/mimohealth/triage/internal/knowledge"
	"go.uber.org/zap"
)

// GraphStore is the knowledge-graph collaborator. *knowledge.Store satisfies
// it; tests supply fakes.
type GraphStore interface {
	ListSymptoms(ctx context.Context) ([]string, error)
	ListDisorders(ctx context.Context) ([]string, error)
	DisordersForSymptoms(ctx context.Context, symptoms []string) ([]knowledge.DisorderCount, error)
}

// Vocabulary is an in-memory snapshot of all known symptom and disorder
// names, taken once at engine construction and read-only afterwards.
// Staleness across a long-lived engine instance is an accepted tradeoff.
type Vocabulary struct {
	symptoms  []string
	disorders []string
}

// LoadVocabulary snapshots the graph's symptom and disorder names. An
// unreachable store degrades to an empty vocabulary with a logged warning,
// leaving the engine in fallback-only mode rather than failing hard.
func LoadVocabulary(ctx context.Context, store GraphStore, logger *zap.Logger) *Vocabulary {
	v := &Vocabulary{}
	if store == nil {
		logger.Warn("no knowledge store configured, vocabulary empty")
		return v
	}

	symptoms, err := store.ListSymptoms(ctx)
	if err != nil {
		logger.Warn("loading symptoms failed, vocabulary empty", zap.Error(err))
		return v
	}
	disorders, err := store.ListDisorders(ctx)
	if err != nil {
		logger.Warn("loading disorders failed, vocabulary empty", zap.Error(err))
		return v
	}

	sort.Strings(symptoms)
	sort.Strings(disorders)
	v.symptoms = symptoms
	v.disorders = disorders
	logger.Info("vocabulary loaded",
		zap.Int("symptoms", len(symptoms)), zap.Int("disorders", len(disorders)))
	return v
}

// NewVocabulary builds a vocabulary from explicit name lists. Used by tests
// and by callers that snapshot the graph themselves.
func NewVocabulary(symptoms, disorders []string) *Vocabulary {
	s := append([]string(nil), symptoms...)
	d := append([]string(nil), disorders...)
	sort.Strings(s)
	sort.Strings(d)
	return &Vocabulary{symptoms: s, disorders: d}
}

// Symptoms returns the sorted symptom names.
func (v *Vocabulary) Symptoms() []string { return v.symptoms }

// Disorders returns the sorted disorder names.
func (v *Vocabulary) Disorders() []string { return v.disorders }

// Empty reports whether the vocabulary holds no names at all.
func (v *Vocabulary) Empty() bool {
	return len(v.symptoms) == 0 && len(v.disorders) == 0
}
