// Package graph provides utilities for publishing entities to the knowledge graph.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/knowcore/vocabulary/knowcore"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
)

// GraphIngestSubject is the subject every ingestion pass publishes entity
// payloads to; the graph-store component consumes it and applies the
// triples to Neo4j.
const GraphIngestSubject = "graph.ingest.entity"

// EntityIngestMessage is the message format for graph ingestion.
type EntityIngestMessage struct {
	ID        string           `json:"id"`
	Triples   []message.Triple `json:"triples"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ConceptEntityID generates a consistent entity ID for a CanonicalConcept.
// Format: knowcore.<tenant>.concept.<canonical-name>
func ConceptEntityID(tenant, canonicalName string) string {
	return fmt.Sprintf("knowcore.%s.concept.%s", tenant, canonicalName)
}

// RelationEntityID generates a consistent entity ID for a SemanticRelation.
// Format: knowcore.<tenant>.relation.<subject>.<type>.<object>
func RelationEntityID(tenant, subjectConcept string, relType knowcore.RelationType, objectConcept string) string {
	return fmt.Sprintf("knowcore.%s.relation.%s.%s.%s", tenant, subjectConcept, relType, objectConcept)
}

// ContextEntityID generates a consistent entity ID for a navigation
// ContextNode (document, section, or window).
func ContextEntityID(tenant string, kind knowcore.ContextNodeKind, localID string) string {
	return fmt.Sprintf("knowcore.%s.context.%s.%s", tenant, kind, localID)
}

// PublishConcept publishes a CanonicalConcept's identifying triples to the
// knowledge graph.
func PublishConcept(ctx context.Context, nc *natsclient.Client, tenant, canonicalName, conceptType string, quality float64, source string) error {
	if nc == nil {
		return nil // Graceful degradation: no NATS client configured.
	}

	entityID := ConceptEntityID(tenant, canonicalName)
	now := time.Now()

	triples := []message.Triple{
		{
			Subject:    entityID,
			Predicate:  knowcore.PredicateConceptCanonicalName,
			Object:     canonicalName,
			Source:     source,
			Timestamp:  now,
			Confidence: 1.0,
		},
		{
			Subject:    entityID,
			Predicate:  knowcore.PredicateConceptType,
			Object:     conceptType,
			Source:     source,
			Timestamp:  now,
			Confidence: 1.0,
		},
		{
			Subject:    entityID,
			Predicate:  knowcore.PredicateConceptQuality,
			Object:     quality,
			Source:     source,
			Timestamp:  now,
			Confidence: quality,
		},
	}

	return publishEntity(ctx, nc, entityID, triples, now)
}

// PublishRelation publishes a promoted SemanticRelation's triples, along
// with its grade, tier, and confidence, to the knowledge graph.
func PublishRelation(
	ctx context.Context,
	nc *natsclient.Client,
	tenant, subjectConcept string,
	relType knowcore.RelationType,
	objectConcept string,
	grade knowcore.SemanticGrade,
	tier knowcore.DefensibilityTier,
	confidence, supportStrength float64,
	source string,
) error {
	if nc == nil {
		return nil
	}

	entityID := RelationEntityID(tenant, subjectConcept, relType, objectConcept)
	now := time.Now()

	triples := []message.Triple{
		{Subject: entityID, Predicate: knowcore.PredicateRelationType, Object: string(relType), Source: source, Timestamp: now, Confidence: confidence},
		{Subject: entityID, Predicate: knowcore.PredicateSemanticGrade, Object: string(grade), Source: source, Timestamp: now, Confidence: confidence},
		{Subject: entityID, Predicate: knowcore.PredicateDefensibilityTier, Object: string(tier), Source: source, Timestamp: now, Confidence: confidence},
		{Subject: entityID, Predicate: knowcore.PredicateConfidence, Object: confidence, Source: source, Timestamp: now, Confidence: confidence},
		{Subject: entityID, Predicate: knowcore.PredicateSupportStrength, Object: supportStrength, Source: source, Timestamp: now, Confidence: confidence},
	}

	return publishEntity(ctx, nc, entityID, triples, now)
}

// PublishMentionedIn publishes a MENTIONED_IN navigation edge's weight and
// count. It never touches the semantic predicate set (graph lint NAV-001).
func PublishMentionedIn(ctx context.Context, nc *natsclient.Client, tenant string, kind knowcore.ContextNodeKind, contextLocalID, conceptCanonicalName string, count int, weight float64, firstSeen time.Time, source string) error {
	if nc == nil {
		return nil
	}

	entityID := ContextEntityID(tenant, kind, contextLocalID) + ".mentions." + conceptCanonicalName
	now := time.Now()

	triples := []message.Triple{
		{Subject: entityID, Predicate: knowcore.PredicateContextKind, Object: string(kind), Source: source, Timestamp: now, Confidence: 1.0},
		{Subject: entityID, Predicate: knowcore.PredicateMentionCount, Object: count, Source: source, Timestamp: now, Confidence: 1.0},
		{Subject: entityID, Predicate: knowcore.PredicateMentionWeight, Object: weight, Source: source, Timestamp: now, Confidence: 1.0},
		{Subject: entityID, Predicate: knowcore.PredicateMentionFirstSeen, Object: firstSeen.Format(time.RFC3339), Source: source, Timestamp: now, Confidence: 1.0},
	}

	return publishEntity(ctx, nc, entityID, triples, now)
}

func publishEntity(ctx context.Context, nc *natsclient.Client, entityID string, triples []message.Triple, now time.Time) error {
	msg := EntityIngestMessage{
		ID:        entityID,
		Triples:   triples,
		UpdatedAt: now,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal entity %s: %w", entityID, err)
	}

	if err := nc.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish entity %s: %w", entityID, err)
	}

	return nil
}
