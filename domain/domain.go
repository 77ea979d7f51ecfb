// Package domain defines the entity data model spec §3 names: every record
// an ingestion pass reads or writes, and the ingestion-time identifiers
// (local unit ids, mention-pair keys, dedup keys) passes key their caches
// and MERGE writes on. Tagged enum types live in vocabulary/knowcore and are
// referenced here rather than redeclared (spec §9 "GLOSSARY").
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// NewID mints an opaque record identifier. Grounded on the teacher's
// storage.EntityID/google/uuid usage: every record in this domain carries
// one of these rather than a database-assigned sequence.
func NewID() string {
	return uuid.New().String()
}

// DocumentVersion is one ingested revision of a source document. Passes key
// their idempotency and caching off DocVersionID, not DocumentID, so a
// re-ingested revision reruns the pipeline while an unchanged one does not.
type DocumentVersion struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	TenantID    string    `json:"tenant_id"`
	ContentHash string    `json:"content_hash"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// DocItem is a structural element of a document: a paragraph, heading,
// table, or list (spec §3, §4.1).
type DocItem struct {
	ID          string                `json:"id"`
	DocVersionID string               `json:"doc_version_id"`
	Type        knowcore.DocItemType  `json:"type"`
	Order       int                   `json:"order"`
	Text        string                `json:"text"`
	SectionPath []string              `json:"section_path,omitempty"`
}

// Unit is an addressable, boundary-split span of a DocItem's text, keyed by
// a stable local id ("U1".."Un") scoped to that DocItem (spec §4.1).
type Unit struct {
	ID          string `json:"id"`
	DocItemID   string `json:"docitem_id"`
	LocalID     string `json:"local_id"`
	Text        string `json:"text"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Structural  bool   `json:"structural"`
}

// MentionSpan is one occurrence of a referring expression in a DocItem
// (spec §4.2).
type MentionSpan struct {
	ID          string              `json:"id"`
	DocItemID   string              `json:"docitem_id"`
	Text        string              `json:"text"`
	Start       int                 `json:"start"`
	End         int                 `json:"end"`
	Type        knowcore.MentionType `json:"type"`
	SentenceIdx int                 `json:"sentence_idx"`
}

// CoreferenceChain groups MentionSpans gating has linked to one referent.
type CoreferenceChain struct {
	ID         string   `json:"id"`
	DocVersionID string `json:"doc_version_id"`
	MentionIDs []string `json:"mention_ids"`
	Signature  string   `json:"signature"`
}

// CorefLink records one accepted or rejected edge between two mentions,
// distinct from the chain it may or may not join.
type CorefLink struct {
	ID          string                  `json:"id"`
	FromMention string                  `json:"from_mention_id"`
	ToMention   string                  `json:"to_mention_id"`
	Outcome     knowcore.CorefOutcome   `json:"outcome"`
	Reason      knowcore.CorefReasonCode `json:"reason"`
	Confidence  float64                 `json:"confidence"`
}

// CorefDecision is the persisted, cacheable gating outcome for one mention
// pair (spec §8 "CorefDecision cache-hit determinism"). MentionPairKey is
// the cache key storage.Store.PutCorefDecision/GetCorefDecision use.
type CorefDecision struct {
	MentionPairKey string                   `json:"mention_pair_key"`
	Outcome        knowcore.CorefOutcome    `json:"outcome"`
	Reason         knowcore.CorefReasonCode `json:"reason"`
	Confidence     float64                  `json:"confidence"`
}

// MentionPairKey builds the deterministic cache key two mention surface
// forms gate under: lowercase surface pair, order-independent.
func MentionPairKey(tenantID, surfaceA, surfaceB string) string {
	a, b := lowerTrim(surfaceA), lowerTrim(surfaceB)
	if a > b {
		a, b = b, a
	}
	return tenantID + "|" + a + "|" + b
}

func lowerTrim(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}

// CanonicalConcept is a deduplicated entity the graph and planner reason
// over (spec §4.3, §4.8).
type CanonicalConcept struct {
	ID            string  `json:"id"`
	TenantID      string  `json:"tenant_id"`
	CanonicalName string  `json:"canonical_name"`
	EntityType    string  `json:"entity_type"`
	QualityScore  float64 `json:"quality_score"`
}

// RawAssertion is one extracted, not-yet-linked claim about a concept
// (spec §4.3).
type RawAssertion struct {
	ID              string               `json:"id"`
	DocItemID       string               `json:"docitem_id"`
	UnitID          string               `json:"unit_id,omitempty"`
	ConceptID       string               `json:"concept_id,omitempty"`
	Label           string               `json:"label"`
	Type            knowcore.AssertionType `json:"type"`
	Text            string               `json:"text"`
	Confidence      float64              `json:"confidence"`
	NoConceptMatch  bool                 `json:"no_concept_match"`
}

// Evidence anchors a claim to the verbatim document text it was read from
// (spec §8 "evidence-span substring invariant": EvidenceText must equal
// DocItemText[SpanStart:SpanEnd]).
type Evidence struct {
	DocItemID string `json:"docitem_id"`
	UnitID    string `json:"unit_id,omitempty"`
	Text      string `json:"text"`
	SpanStart int    `json:"span_start"`
	SpanEnd   int    `json:"span_end"`
}

// CanonicalRelation is a typed relation between two concepts before
// promotion (spec §4.4).
type CanonicalRelation struct {
	ID                string                    `json:"id"`
	TenantID          string                    `json:"tenant_id"`
	SubjectConceptID  string                    `json:"subject_concept_id"`
	Type              knowcore.RelationType     `json:"type"`
	ObjectConceptID   string                    `json:"object_concept_id"`
	Method            knowcore.ExtractionMethod `json:"method"`
	Evidence          []Evidence                `json:"evidence_bundle"`
	ExplicitSupport   int                       `json:"explicit_support"`
	DiscursiveSupport int                       `json:"discursive_support"`
	Confidence        float64                   `json:"confidence"`
	DistinctDocuments int                       `json:"distinct_documents"`
}

// SemanticRelation is a CanonicalRelation that cleared promotion (spec
// §4.6) and is now traversable by the planner.
type SemanticRelation struct {
	ID               string                    `json:"id"`
	TenantID         string                    `json:"tenant_id"`
	SubjectConceptID string                    `json:"subject_concept_id"`
	Type             knowcore.RelationType     `json:"type"`
	ObjectConceptID  string                    `json:"object_concept_id"`
	Grade            knowcore.SemanticGrade    `json:"grade"`
	Tier             knowcore.DefensibilityTier `json:"tier"`
	Confidence       float64                   `json:"confidence"`
	SupportStrength  float64                   `json:"support_strength"`
	PromotedFrom     string                    `json:"promoted_from"`
	PromotedAt       time.Time                 `json:"promoted_at"`
}

// NormativeRule is a modal-marker-anchored constraint (spec §4.5). It is
// indexable and citable from synthesis, but never traversable by the
// planner's graph walks.
type NormativeRule struct {
	ID              string                 `json:"id"`
	DocItemID       string                 `json:"docitem_id"`
	SubjectText     string                 `json:"subject_text"`
	Modality        knowcore.Modality      `json:"modality"`
	ConstraintType  knowcore.ConstraintType `json:"constraint_type"`
	ConstraintValue string                 `json:"constraint_value"`
	Evidence        Evidence               `json:"evidence"`
	DedupKey        string                 `json:"dedup_key"`
	DocCoverage     int                    `json:"doc_coverage"`
	SectionCoverage int                    `json:"section_coverage"`
}

// SpecFact is a structured fact read from a table row or key/value list
// (spec §4.5).
type SpecFact struct {
	ID            string                    `json:"id"`
	DocItemID     string                    `json:"docitem_id"`
	Subject       string                    `json:"subject"`
	Attribute     string                    `json:"attribute"`
	Value         string                    `json:"value"`
	ValueNumeric  *float64                  `json:"value_numeric,omitempty"`
	Unit          string                    `json:"unit,omitempty"`
	Source        knowcore.SpecStructureSource `json:"source"`
	DedupKey      string                    `json:"dedup_key"`
	DocCoverage   int                       `json:"doc_coverage"`
}

// ContextNode is a navigation node: a document, section, or (optionally) a
// window (spec §4.7).
type ContextNode struct {
	ID        string                  `json:"id"`
	TenantID  string                  `json:"tenant_id"`
	Kind      knowcore.ContextNodeKind `json:"kind"`
	LocalID   string                  `json:"local_id"`
	ParentID  string                  `json:"parent_id,omitempty"`
	DocItemIDs []string               `json:"docitem_ids"`
}

// MentionedIn is a MERGE-accumulated navigation edge from a concept to a
// ContextNode (spec §4.7). Weight is recomputed after all mentions for a
// document are counted: weight = count / max_count_per_context.
type MentionedIn struct {
	ConceptID     string    `json:"concept_id"`
	ContextNodeID string    `json:"context_node_id"`
	Count         int       `json:"count"`
	Weight        float64   `json:"weight"`
	FirstSeen     time.Time `json:"first_seen"`
}

// EntityType is one registered row in the relational EntityType registry R
// (storage/sqlstore), distinct from vocabulary/knowcore's closed RelationType
// enum: entity types are an open, admin-curated ontology.
type EntityType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Approved    bool      `json:"approved"`
	ProposedBy  string    `json:"proposed_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DedupKey builds the canonical MERGE key a NormativeRule or SpecFact
// writer keys on: subject + normalised predicate/attribute + value + unit
// (spec §4.5).
func DedupKey(subject, predicateOrAttribute, value, unit string) string {
	return lowerTrim(subject) + "::" + lowerTrim(predicateOrAttribute) + "::" + lowerTrim(value) + "::" + lowerTrim(unit)
}
