// Package storage provides ephemeral, NATS KV-backed caches used by the
// ingestion pipeline: the coreference decision cache (keyed by mention pair,
// so re-ingesting an unchanged document does not re-run gating) and the
// per-context summary cache that the navigation layer writes and retrieval
// reads planner seed concepts from.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// EntityType discriminates the two ephemeral caches kept in NATS KV.
type EntityType string

const (
	EntityTypeCorefDecision  EntityType = "coref_decision"
	EntityTypeContextSummary EntityType = "context_summary"
)

// Bucket names for each cache.
const (
	BucketCorefDecisions  = "KNOWCORE_COREF_DECISIONS"
	BucketContextSummary  = "KNOWCORE_CONTEXT_SUMMARY"
)

// EntityID represents a typed cache key.
type EntityID struct {
	Type EntityType
	ID   string
}

// String returns the string representation of the entity ID.
func (e EntityID) String() string {
	return fmt.Sprintf("%s:%s", e.Type, e.ID)
}

// ParseEntityID parses an entity ID string into its components.
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return EntityID{}, fmt.Errorf("invalid entity ID format: %s", s)
	}
	entityType := EntityType(parts[0])
	switch entityType {
	case EntityTypeCorefDecision, EntityTypeContextSummary:
		return EntityID{Type: entityType, ID: parts[1]}, nil
	default:
		return EntityID{}, fmt.Errorf("unknown entity type: %s", parts[0])
	}
}

// CorefDecisionEntry caches the outcome of coreference gating for one
// mention pair, keyed by tenant+mention-pair hash (spec §3 determinism
// invariant: identical input produces an identical decision).
type CorefDecisionEntry struct {
	MentionPairKey string    `json:"mention_pair_key"`
	Outcome        string    `json:"outcome"`
	ReasonCode     string    `json:"reason_code"`
	Confidence     float64   `json:"confidence"`
	DecidedAt      time.Time `json:"decided_at"`
}

// ContextSummaryEntry caches a DocumentContext or SectionContext's rolled-up
// concept-mention summary, written by the navigation layer builder and read
// by retrieval as a fallback source of planner seed concepts.
type ContextSummaryEntry struct {
	ContextNodeID string    `json:"context_node_id"`
	TopConcepts   []string  `json:"top_concepts"`
	MentionTotal  int       `json:"mention_total"`
	ComputedAt    time.Time `json:"computed_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Store provides ephemeral cache operations backed by NATS KV.
type Store struct {
	corefDecisions jetstream.KeyValue
	contextSummary jetstream.KeyValue
}

// NewStore creates a new Store with the given JetStream context, creating
// the necessary KV buckets if they don't exist.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	corefDecisions, err := getOrCreateBucket(ctx, js, BucketCorefDecisions, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("create coref decisions bucket: %w", err)
	}

	contextSummary, err := getOrCreateBucket(ctx, js, BucketContextSummary, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("create context summary bucket: %w", err)
	}

	return &Store{
		corefDecisions: corefDecisions,
		contextSummary: contextSummary,
	}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string, ttl time.Duration) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("knowcore %s cache", strings.ToLower(name)),
		TTL:         ttl,
	})
}

// PutCorefDecision caches a gating decision for a mention pair.
func (s *Store) PutCorefDecision(ctx context.Context, key string, entry *CorefDecisionEntry) error {
	entry.MentionPairKey = key
	entry.DecidedAt = time.Now()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal coref decision: %w", err)
	}

	if _, err := s.corefDecisions.Put(ctx, sanitizeKey(key), data); err != nil {
		return fmt.Errorf("store coref decision: %w", err)
	}
	return nil
}

// GetCorefDecision retrieves a cached gating decision, or ErrNotFound if the
// pair has not been decided before (or its entry has expired).
func (s *Store) GetCorefDecision(ctx context.Context, key string) (*CorefDecisionEntry, error) {
	entry, err := s.corefDecisions.Get(ctx, sanitizeKey(key))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coref decision: %w", err)
	}

	var d CorefDecisionEntry
	if err := json.Unmarshal(entry.Value(), &d); err != nil {
		return nil, fmt.Errorf("unmarshal coref decision: %w", err)
	}
	return &d, nil
}

// PutContextSummary caches a context node's rolled-up mention summary.
func (s *Store) PutContextSummary(ctx context.Context, entry *ContextSummaryEntry) error {
	entry.ComputedAt = time.Now()
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = entry.ComputedAt.Add(time.Hour)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal context summary: %w", err)
	}

	if _, err := s.contextSummary.Put(ctx, sanitizeKey(entry.ContextNodeID), data); err != nil {
		return fmt.Errorf("store context summary: %w", err)
	}
	return nil
}

// GetContextSummary retrieves a cached context summary, or ErrNotFound if
// absent or TTL-expired.
func (s *Store) GetContextSummary(ctx context.Context, contextNodeID string) (*ContextSummaryEntry, error) {
	entry, err := s.contextSummary.Get(ctx, sanitizeKey(contextNodeID))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get context summary: %w", err)
	}

	var c ContextSummaryEntry
	if err := json.Unmarshal(entry.Value(), &c); err != nil {
		return nil, fmt.Errorf("unmarshal context summary: %w", err)
	}
	if time.Now().After(c.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &c, nil
}

// sanitizeKey replaces characters the NATS KV key grammar forbids (it only
// allows [-/_=.a-zA-Z0-9]) with underscores.
func sanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '=', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
