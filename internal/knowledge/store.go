package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Store handles Neo4j operations over the disorder/symptom knowledge graph.
// The graph holds Disorder and Symptom nodes joined by INDICATES edges
// (Symptom)-[:INDICATES]->(Disorder); edges carry no weight beyond existence.
type Store struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// DisorderCount pairs a disorder name with the number of supplied symptoms
// that indicate it.
type DisorderCount struct {
	Name  string
	Count int
}

// NewStore creates a new Neo4j knowledge store.
func NewStore(uri, user, password string, logger *zap.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Store{driver: driver, logger: logger}, nil
}

// Close shuts down the Neo4j driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Ping verifies the Neo4j connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// ListSymptoms returns the names of all known symptoms.
func (s *Store) ListSymptoms(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, `MATCH (s:Symptom) RETURN s.name AS name`)
}

// ListDisorders returns the names of all known disorders.
func (s *Store) ListDisorders(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, `MATCH (d:Disorder) RETURN d.name AS name`)
}

func (s *Store) listNames(ctx context.Context, query string) ([]string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var names []string
	for result.Next(ctx) {
		if v, ok := result.Record().Get("name"); ok && v != nil {
			names = append(names, v.(string))
		}
	}
	return names, result.Err()
}

// DisordersForSymptoms counts, per disorder, how many of the given symptoms
// indicate it. Disorders with no correlation are omitted.
func (s *Store) DisordersForSymptoms(ctx context.Context, symptoms []string) ([]DisorderCount, error) {
	if len(symptoms) == 0 {
		return nil, nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (s:Symptom)-[:INDICATES]->(d:Disorder)
		 WHERE s.name IN $symptoms
		 RETURN d.name AS disorder, count(*) AS score
		 ORDER BY score DESC`,
		map[string]interface{}{"symptoms": symptoms})
	if err != nil {
		return nil, err
	}

	var counts []DisorderCount
	for result.Next(ctx) {
		rec := result.Record()
		name, _ := rec.Get("disorder")
		score, _ := rec.Get("score")
		counts = append(counts, DisorderCount{
			Name:  name.(string),
			Count: int(score.(int64)),
		})
	}
	return counts, result.Err()
}
