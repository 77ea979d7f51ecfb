package knowcore

// RelationType is the closed set of typed relations between two
// CanonicalConcepts (spec §4.4).
type RelationType string

const (
	// Structural (hierarchies & taxonomies).
	RelationPartOf    RelationType = "PART_OF"
	RelationSubtypeOf RelationType = "SUBTYPE_OF"

	// Dependency.
	RelationRequires RelationType = "REQUIRES"
	RelationUses     RelationType = "USES"

	// Integration.
	RelationIntegratesWith RelationType = "INTEGRATES_WITH"
	RelationExtends        RelationType = "EXTENDS"

	// Capability.
	RelationEnables RelationType = "ENABLES"

	// Temporal.
	RelationVersionOf  RelationType = "VERSION_OF"
	RelationPrecedes   RelationType = "PRECEDES"
	RelationReplaces   RelationType = "REPLACES"
	RelationDeprecates RelationType = "DEPRECATES"

	// Variant.
	RelationAlternativeTo RelationType = "ALTERNATIVE_TO"
	RelationChoiceBetween RelationType = "CHOICE_BETWEEN"

	// Governance.
	RelationAppliesTo  RelationType = "APPLIES_TO"
	RelationGovernedBy RelationType = "GOVERNED_BY"

	// Causal / constraint.
	RelationCauses    RelationType = "CAUSES"
	RelationPrevents  RelationType = "PREVENTS"
	RelationMitigates RelationType = "MITIGATES"

	// Definitional.
	RelationDefines RelationType = "DEFINES"

	// Instance.
	RelationExampleOf RelationType = "EXAMPLE_OF"

	// Special.
	RelationUnknown        RelationType = "UNKNOWN"
	RelationAssociatedWith RelationType = "ASSOCIATED_WITH"
	RelationConflictsWith  RelationType = "CONFLICTS_WITH"
)

// AllRelationTypes lists the full closed set, for validation.
func AllRelationTypes() []RelationType {
	return []RelationType{
		RelationPartOf, RelationSubtypeOf,
		RelationRequires, RelationUses,
		RelationIntegratesWith, RelationExtends,
		RelationEnables,
		RelationVersionOf, RelationPrecedes, RelationReplaces, RelationDeprecates,
		RelationAlternativeTo, RelationChoiceBetween,
		RelationAppliesTo, RelationGovernedBy,
		RelationCauses, RelationPrevents, RelationMitigates,
		RelationDefines,
		RelationExampleOf,
		RelationUnknown, RelationAssociatedWith, RelationConflictsWith,
	}
}

// IsValid reports whether r is a member of the closed relation set.
func (r RelationType) IsValid() bool {
	for _, v := range AllRelationTypes() {
		if v == r {
			return true
		}
	}
	return false
}

// ExtractionMethod names how a TypedRelation was produced (spec §4.4).
type ExtractionMethod string

const (
	ExtractionPattern  ExtractionMethod = "PATTERN"
	ExtractionLLM      ExtractionMethod = "LLM"
	ExtractionHybrid   ExtractionMethod = "HYBRID"
	ExtractionInferred ExtractionMethod = "INFERRED"
)

// AssertionType classifies a RawAssertion by rhetorical type (spec §4.3).
type AssertionType string

const (
	AssertionDefinitional AssertionType = "DEFINITIONAL"
	AssertionPrescriptive AssertionType = "PRESCRIPTIVE"
	AssertionCausal       AssertionType = "CAUSAL"
	AssertionComparative  AssertionType = "COMPARATIVE"
	AssertionFactual      AssertionType = "FACTUAL"
	AssertionConditional  AssertionType = "CONDITIONAL"
	AssertionPermissive   AssertionType = "PERMISSIVE"
	AssertionProcedural   AssertionType = "PROCEDURAL"
)

// AlwaysPromotable is the strict-mode promotable subset (spec §4.3 step 4).
func (a AssertionType) AlwaysPromotable() bool {
	switch a {
	case AssertionDefinitional, AssertionPrescriptive, AssertionCausal:
		return true
	default:
		return false
	}
}

// SemanticGrade describes how a relation was evidenced (spec §4.6).
type SemanticGrade string

const (
	GradeExplicit   SemanticGrade = "EXPLICIT"
	GradeMixed      SemanticGrade = "MIXED"
	GradeDiscursive SemanticGrade = "DISCURSIVE"
)

// DefensibilityTier gates which relations the planner may traverse (spec §4.6/4.8).
type DefensibilityTier string

const (
	TierStrict       DefensibilityTier = "STRICT"
	TierExtended     DefensibilityTier = "EXTENDED"
	TierExperimental DefensibilityTier = "EXPERIMENTAL"
	// TierReject is not a persisted tier; it marks a promotion decision as
	// REJECT (spec §4.6 "forbidden relation types yield REJECT").
	TierReject DefensibilityTier = "REJECT"
)

// Modality is the closed set of modal markers a NormativeRule is anchored on.
type Modality string

const (
	ModalityMust       Modality = "MUST"
	ModalityShall      Modality = "SHALL"
	ModalityShould     Modality = "SHOULD"
	ModalityMay        Modality = "MAY"
	ModalityRequired   Modality = "REQUIRED"
	ModalityProhibited Modality = "PROHIBITED"
)

// ConstraintType classifies what kind of constraint a NormativeRule states.
type ConstraintType string

const (
	ConstraintValue      ConstraintType = "VALUE"
	ConstraintRange      ConstraintType = "RANGE"
	ConstraintPresence   ConstraintType = "PRESENCE"
	ConstraintSequence   ConstraintType = "SEQUENCE"
	ConstraintExclusion  ConstraintType = "EXCLUSION"
	ConstraintProcedural ConstraintType = "PROCEDURAL"
)

// SpecStructureSource names where a SpecFact's value was read from.
type SpecStructureSource string

const (
	SpecSourceTableRow SpecStructureSource = "TABLE_ROW"
	SpecSourceKVList   SpecStructureSource = "KV_LIST"
)

// ContextNodeKind discriminates navigation nodes (spec §3, §4.7).
type ContextNodeKind string

const (
	ContextDocument ContextNodeKind = "DOCUMENT"
	ContextSection  ContextNodeKind = "SECTION"
	ContextWindow   ContextNodeKind = "WINDOW"
)

// MentionType classifies a MentionSpan (spec §3).
type MentionType string

const (
	MentionPronoun MentionType = "PRONOUN"
	MentionProper  MentionType = "PROPER"
	MentionNP      MentionType = "NP"
)

// CorefOutcome is the result of coreference gating for one mention (spec §3).
type CorefOutcome string

const (
	CorefResolved       CorefOutcome = "RESOLVED"
	CorefAbstain        CorefOutcome = "ABSTAIN"
	CorefNonReferential CorefOutcome = "NON_REFERENTIAL"
)

// CorefReasonCode explains why gating accepted, rejected, or abstained.
type CorefReasonCode string

const (
	ReasonPronounAccepted    CorefReasonCode = "PRONOUN_ACCEPTED"
	ReasonPronounLowConf     CorefReasonCode = "PRONOUN_LOW_CONFIDENCE"
	ReasonPronounTooFar      CorefReasonCode = "PRONOUN_DISTANCE_EXCEEDED"
	ReasonPronounNonRef      CorefReasonCode = "PRONOUN_NON_REFERENTIAL"
	ReasonNamedNamedAccepted CorefReasonCode = "NAMED_NAMED_ACCEPTED"
	ReasonNamedNamedRejected CorefReasonCode = "NAMED_NAMED_REJECTED"
	ReasonNamedNamedReview   CorefReasonCode = "NAMED_NAMED_REVIEW"
	ReasonArbiterAbstained   CorefReasonCode = "ARBITER_ABSTAINED"
)

// PromotionDecision is the outcome of evaluating a CanonicalRelation for
// promotion to a SemanticRelation (spec §4.6).
type PromotionDecision string

const (
	PromotionPromote PromotionDecision = "PROMOTE"
	PromotionDefer   PromotionDecision = "DEFER"
	PromotionReject  PromotionDecision = "REJECT"
)

// PlanMode names the mode a GraphFirstPlan resolved to (spec §4.8).
type PlanMode string

const (
	PlanModeReasoned PlanMode = "REASONED"
	PlanModeAnchored PlanMode = "ANCHORED"
	PlanModeLight    PlanMode = "LIGHT"
	PlanModeTextOnly PlanMode = "TEXT_ONLY"
)

// DocItemType classifies a structural item within a document (spec §3).
type DocItemType string

const (
	DocItemNarrative DocItemType = "NARRATIVE"
	DocItemHeading   DocItemType = "HEADING"
	DocItemTable     DocItemType = "TABLE"
	DocItemList      DocItemType = "LIST"
)
