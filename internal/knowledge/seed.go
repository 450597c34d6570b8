package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// DisorderEntry is one dataset record: a disorder and its indicating symptoms.
type DisorderEntry struct {
	Name     string   `json:"name"`
	Symptoms []string `json:"symptoms"`
}

// LoadDataset reads a disorder/symptom dataset from a JSON file.
func LoadDataset(path string) ([]DisorderEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var entries []DisorderEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return entries, nil
}

// Wipe removes all nodes and relationships from the graph.
func (s *Store) Wipe(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
	return err
}

// Seed merges the dataset into the graph. MERGE keeps the operation
// idempotent: re-seeding an existing graph creates no duplicates.
func (s *Store) Seed(ctx context.Context, entries []DisorderEntry) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, entry := range entries {
		_, err := session.Run(ctx,
			`MERGE (d:Disorder {name: $name})`,
			map[string]interface{}{"name": entry.Name})
		if err != nil {
			return fmt.Errorf("merge disorder %s: %w", entry.Name, err)
		}

		for _, symptom := range entry.Symptoms {
			_, err := session.Run(ctx,
				`MATCH (d:Disorder {name: $disorder})
				 MERGE (s:Symptom {name: $symptom})
				 MERGE (s)-[:INDICATES]->(d)`,
				map[string]interface{}{"symptom": symptom, "disorder": entry.Name})
			if err != nil {
				return fmt.Errorf("merge symptom %s: %w", symptom, err)
			}
		}
		s.logger.Info("seeded disorder",
			zap.String("name", entry.Name), zap.Int("symptoms", len(entry.Symptoms)))
	}
	return nil
}
