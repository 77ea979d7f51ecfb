package knowcore

import "github.com/c360studio/semstreams/vocabulary"

// Namespace is the IRI prefix under which every predicate in this package
// is exported.
const Namespace = "https://knowcore.dev/ontology/"

// EntityNamespace is the IRI prefix for entity identifiers minted by the
// ingestion and retrieval core.
const EntityNamespace = "https://knowcore.dev/entity/"

// Semantic-layer predicates. These describe CanonicalRelation /
// SemanticRelation edges and the concepts they connect. NAV-001/002/003
// forbid these from ever terminating on or originating from a ContextNode.
const (
	// PredicateRelationType names which RelationType a SemanticRelation carries.
	PredicateRelationType = "knowcore.relation.type"

	// PredicateSemanticGrade names the grade computed for a relation.
	PredicateSemanticGrade = "knowcore.relation.grade"

	// PredicateDefensibilityTier names the tier a relation was attributed.
	PredicateDefensibilityTier = "knowcore.relation.tier"

	// PredicateConfidence is the relation's aggregate confidence score.
	PredicateConfidence = "knowcore.relation.confidence"

	// PredicateSupportStrength is the promoted relation's support strength.
	PredicateSupportStrength = "knowcore.relation.support_strength"

	// PredicateConceptCanonicalName is a CanonicalConcept's normalised name.
	PredicateConceptCanonicalName = "knowcore.concept.canonical_name"

	// PredicateConceptType is a CanonicalConcept's registered entity type.
	PredicateConceptType = "knowcore.concept.type"

	// PredicateConceptQuality is a CanonicalConcept's quality score.
	PredicateConceptQuality = "knowcore.concept.quality_score"
)

// Structural (corpus-anatomy) predicates. These live only on ContextNode
// records and the MENTIONED_IN edge; the graph lint forbids semantic
// predicates from appearing here and vice versa.
const (
	// PredicateContextKind names whether a ContextNode is a document,
	// section, or window.
	PredicateContextKind = "knowcore.context.kind"

	// PredicateMentionCount is the MENTIONED_IN edge's raw co-occurrence count.
	PredicateMentionCount = "knowcore.mention.count"

	// PredicateMentionWeight is the MENTIONED_IN edge's normalised weight.
	PredicateMentionWeight = "knowcore.mention.weight"

	// PredicateMentionFirstSeen is when a MENTIONED_IN edge was first created.
	PredicateMentionFirstSeen = "knowcore.mention.first_seen"
)

// Evidence and anchor predicates, shared by RawAssertion, NormativeRule,
// and SpecFact — always paired with a local textual anchor (invariant L1).
const (
	PredicateEvidenceText     = "knowcore.evidence.text"
	PredicateEvidenceDocItem  = "knowcore.evidence.docitem_id"
	PredicateEvidenceUnit     = "knowcore.evidence.unit_id"
	PredicateEvidenceSpanFrom = "knowcore.evidence.span_start"
	PredicateEvidenceSpanTo   = "knowcore.evidence.span_end"
)

func init() {
	registerSemanticPredicates()
	registerStructuralPredicates()
	registerEvidencePredicates()
}

func registerSemanticPredicates() {
	vocabulary.Register(PredicateRelationType,
		vocabulary.WithDescription("Closed-set relation type between two canonical concepts"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"relationType"))

	vocabulary.Register(PredicateSemanticGrade,
		vocabulary.WithDescription("EXPLICIT, MIXED, or DISCURSIVE support composition"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"semanticGrade"))

	vocabulary.Register(PredicateDefensibilityTier,
		vocabulary.WithDescription("STRICT, EXTENDED, or EXPERIMENTAL traversal tier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"defensibilityTier"))

	vocabulary.Register(PredicateConfidence,
		vocabulary.WithDescription("Aggregate relation confidence in [0,1]"),
		vocabulary.WithDataType("float"),
		vocabulary.WithIRI(Namespace+"confidence"))

	vocabulary.Register(PredicateSupportStrength,
		vocabulary.WithDescription("Promoted relation support strength"),
		vocabulary.WithDataType("float"),
		vocabulary.WithIRI(Namespace+"supportStrength"))

	vocabulary.Register(PredicateConceptCanonicalName,
		vocabulary.WithDescription("Normalised canonical name for a concept"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"canonicalName"))

	vocabulary.Register(PredicateConceptType,
		vocabulary.WithDescription("Registered entity type for a concept"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"conceptType"))

	vocabulary.Register(PredicateConceptQuality,
		vocabulary.WithDescription("Concept quality score in [0,1]"),
		vocabulary.WithDataType("float"),
		vocabulary.WithIRI(Namespace+"qualityScore"))
}

func registerStructuralPredicates() {
	vocabulary.Register(PredicateContextKind,
		vocabulary.WithDescription("DOCUMENT, SECTION, or WINDOW context kind"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"contextKind"))

	vocabulary.Register(PredicateMentionCount,
		vocabulary.WithDescription("Raw co-occurrence count for a MENTIONED_IN edge"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"mentionCount"))

	vocabulary.Register(PredicateMentionWeight,
		vocabulary.WithDescription("Normalised weight for a MENTIONED_IN edge, in [0,1]"),
		vocabulary.WithDataType("float"),
		vocabulary.WithIRI(Namespace+"mentionWeight"))

	vocabulary.Register(PredicateMentionFirstSeen,
		vocabulary.WithDescription("RFC3339 timestamp a MENTIONED_IN edge was first created"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"mentionFirstSeen"))
}

func registerEvidencePredicates() {
	vocabulary.Register(PredicateEvidenceText,
		vocabulary.WithDescription("Verbatim evidence text, never paraphrased"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"evidenceText"))

	vocabulary.Register(PredicateEvidenceDocItem,
		vocabulary.WithDescription("DocItem id the evidence span lives in"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"evidenceDocItem"))

	vocabulary.Register(PredicateEvidenceUnit,
		vocabulary.WithDescription("Unit id the evidence span lives in"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"evidenceUnit"))

	vocabulary.Register(PredicateEvidenceSpanFrom,
		vocabulary.WithDescription("Evidence span start offset"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"evidenceSpanStart"))

	vocabulary.Register(PredicateEvidenceSpanTo,
		vocabulary.WithDescription("Evidence span end offset"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"evidenceSpanEnd"))
}

// ForbiddenNavigationEdges is the set of co-occurrence-style predicates the
// graph lint (NAV-001) forbids between two CanonicalConcepts: navigation
// never implies semantics.
var ForbiddenNavigationEdges = map[string]bool{
	"CO_OCCURS":    true,
	"APPEARS_WITH": true,
	"NEAR":         true,
}
