// Package vectorstore implements the vector store the Retriever & Synthesizer
// (spec §4.9) runs its filtered vector search against: a qdrant-backed store
// of Unit/assertion embeddings, tenant- and concept-filterable. Grounded on
// Tangerg-lynx/ai/providers/vectorstores/qdrant/store.go's collection
// lifecycle, point-struct building, and payload-filtered query shape.
// Library: github.com/qdrant/go-client.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// Point is one embedded, upsertable record: a Unit or assertion span, keyed
// by its domain ID, carrying a payload that SearchRequest.Filter matches against.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// SearchRequest is a filtered vector-similarity query (spec §4.9 "filtered
// vector search").
type SearchRequest struct {
	Vector   []float32
	TopK     int
	MinScore float32
	Filter   map[string]string // payload key -> exact-match value
}

// SearchHit is one scored result from a vector search.
type SearchHit struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Store wraps a qdrant collection.
type Store struct {
	client         *qdrant.Client
	collectionName string
	dimensions     uint64
}

// Config configures a Store.
type Config struct {
	Host           string
	Port           int
	APIKey         string
	CollectionName string
	Dimensions     uint64
	UseTLS         bool
}

// New dials qdrant and returns a Store, creating the collection if it does
// not already exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.CollectionName == "" {
		return nil, fmt.Errorf("vectorstore: collection name is required")
	}
	if cfg.Dimensions == 0 {
		return nil, fmt.Errorf("vectorstore: dimensions must be > 0")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: dial qdrant: %w", err)
	}

	store := &Store{client: client, collectionName: cfg.CollectionName, dimensions: cfg.Dimensions}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("vectorstore: check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: create collection %s: %w", s.collectionName, err)
	}
	return nil
}

// Upsert writes points to the collection.
func (s *Store) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	upsert := &qdrant.UpsertPoints{CollectionName: s.collectionName}
	for _, p := range points {
		payload, err := qdrant.TryValueMap(p.Payload)
		if err != nil {
			return fmt.Errorf("vectorstore: build payload for %s: %w", p.ID, err)
		}
		upsert.Points = append(upsert.Points, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		})
	}

	if _, err := s.client.Upsert(ctx, upsert); err != nil {
		return fmt.Errorf("vectorstore: upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search runs a filtered vector similarity query (spec §4.9).
func (s *Store) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	topK := uint64(req.TopK)
	if topK == 0 {
		topK = 10
	}

	query := &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(req.Vector...),
		Limit:          &topK,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if req.MinScore > 0 {
		query.ScoreThreshold = &req.MinScore
	}
	if len(req.Filter) > 0 {
		query.Filter = buildFilter(req.Filter)
	}

	scored, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query collection %s: %w", s.collectionName, err)
	}

	hits := make([]SearchHit, 0, len(scored))
	for _, p := range scored {
		hits = append(hits, SearchHit{
			ID:      p.GetId().GetUuid(),
			Score:   p.GetScore(),
			Payload: convertPayload(p.GetPayload()),
		})
	}
	return hits, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func buildFilter(exact map[string]string) *qdrant.Filter {
	var must []*qdrant.Condition
	for k, v := range exact {
		must = append(must, qdrant.NewMatch(k, v))
	}
	return &qdrant.Filter{Must: must}
}

func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}
