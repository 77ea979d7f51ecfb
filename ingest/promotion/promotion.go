// Package promotion implements Promotion, Grading & Tier Attribution (spec
// §4.6): computing a CanonicalRelation's SemanticGrade, attributing its
// DefensibilityTier via the basis matrix, applying the promotion
// thresholds table and the absolute confidence floor, and publishing a
// cleared SemanticRelation to the graph. Grounded on original_source's
// relation_promoter.py/tier_attribution.py state machine, writing through
// graph.PublishRelation (the teacher's NATS-triple publish helper, dead
// until this package called it).
package promotion

import (
	"context"
	"time"

	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/graph"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// AbsoluteFloor is the confidence floor below which any promotion decision
// is REJECT regardless of grade (spec §4.6: 0.40).
const AbsoluteFloor = 0.40

// forbiddenRelationTypes never promote past EXPLICIT/MIXED support; a
// DISCURSIVE-only instance of one of these is always REJECT, never
// EXTENDED (spec §4.6 "forbidden relation types yield REJECT").
var forbiddenRelationTypes = map[knowcore.RelationType]bool{
	knowcore.RelationUnknown: true,
}

// discursiveStrictEligible is the basis matrix subset of relation types a
// DISCURSIVE-graded relation may still earn STRICT tier for, provided an
// explicit textual marker was also present (spec §4.6).
var discursiveStrictEligible = map[knowcore.RelationType]bool{
	knowcore.RelationRequires: true,
	knowcore.RelationCauses:   true,
	knowcore.RelationPartOf:   true,
	knowcore.RelationDefines:  true,
}

// gradeThreshold is one row of the promotion thresholds table (spec §4.6).
type gradeThreshold struct {
	minSupport     int
	minConfidence  float64
	extraEvidence  int // extra distinct documents/assertions required
	bundleDiversityMin float64
}

var thresholds = map[knowcore.SemanticGrade]gradeThreshold{
	knowcore.GradeExplicit:   {minSupport: 1, minConfidence: 0.60, extraEvidence: 1},
	knowcore.GradeMixed:      {minSupport: 1, minConfidence: 0.65, extraEvidence: 0},
	knowcore.GradeDiscursive: {minSupport: 2, minConfidence: 0.70, extraEvidence: 0, bundleDiversityMin: 0.33},
}

// ComputeGrade derives SemanticGrade from explicit/discursive support
// counts (spec §4.6).
func ComputeGrade(explicitSupport, discursiveSupport int) knowcore.SemanticGrade {
	switch {
	case explicitSupport > 0 && discursiveSupport == 0:
		return knowcore.GradeExplicit
	case discursiveSupport > 0 && explicitSupport == 0:
		return knowcore.GradeDiscursive
	default:
		return knowcore.GradeMixed
	}
}

// AttributeTier derives DefensibilityTier from grade, relation type, and
// whether an explicit textual marker backs the relation (spec §4.6).
func AttributeTier(grade knowcore.SemanticGrade, relType knowcore.RelationType, explicitMarkerPresent bool) knowcore.DefensibilityTier {
	switch grade {
	case knowcore.GradeExplicit:
		return knowcore.TierStrict
	case knowcore.GradeMixed:
		return knowcore.TierStrict
	case knowcore.GradeDiscursive:
		if forbiddenRelationTypes[relType] {
			return knowcore.TierReject
		}
		if discursiveStrictEligible[relType] && explicitMarkerPresent {
			return knowcore.TierStrict
		}
		return knowcore.TierExtended
	default:
		return knowcore.TierExtended
	}
}

// Decide evaluates a CanonicalRelation for promotion (spec §4.6): the
// absolute floor first, then the grade-specific thresholds table.
func Decide(rel domain.CanonicalRelation) (knowcore.PromotionDecision, knowcore.SemanticGrade, knowcore.DefensibilityTier) {
	if rel.Confidence < AbsoluteFloor {
		return knowcore.PromotionReject, "", knowcore.TierReject
	}

	grade := ComputeGrade(rel.ExplicitSupport, rel.DiscursiveSupport)
	tier := AttributeTier(grade, rel.Type, rel.ExplicitSupport > 0)
	if tier == knowcore.TierReject {
		return knowcore.PromotionReject, grade, tier
	}

	th := thresholds[grade]
	support := rel.ExplicitSupport + rel.DiscursiveSupport
	if support < th.minSupport || rel.Confidence < th.minConfidence {
		return knowcore.PromotionDefer, grade, tier
	}

	if grade == knowcore.GradeDiscursive {
		diversity := bundleDiversity(rel)
		multiDocCompensates := rel.DistinctDocuments >= 2
		if diversity < th.bundleDiversityMin && !multiDocCompensates {
			return knowcore.PromotionDefer, grade, tier
		}
	}

	if grade == knowcore.GradeExplicit && rel.DistinctDocuments < th.extraEvidence {
		return knowcore.PromotionDefer, grade, tier
	}

	return knowcore.PromotionPromote, grade, tier
}

// bundleDiversity approximates evidence_bundle diversity as the fraction
// of evidence entries drawn from distinct DocItems.
func bundleDiversity(rel domain.CanonicalRelation) float64 {
	if len(rel.Evidence) == 0 {
		return 0
	}
	seen := make(map[string]bool)
	for _, e := range rel.Evidence {
		seen[e.DocItemID] = true
	}
	return float64(len(seen)) / float64(len(rel.Evidence))
}

// Promote evaluates rel and, if promotable, builds the SemanticRelation
// and publishes it to the graph via graph.PublishRelation.
func Promote(ctx context.Context, nc *natsclient.Client, tenant string, rel domain.CanonicalRelation, subjectName, objectName, source string) (*domain.SemanticRelation, knowcore.PromotionDecision, error) {
	decision, grade, tier := Decide(rel)
	if decision != knowcore.PromotionPromote {
		return nil, decision, nil
	}

	supportStrength := supportStrength(rel)

	sem := &domain.SemanticRelation{
		ID:               domain.NewID(),
		SubjectConceptID: rel.SubjectConceptID,
		Type:             rel.Type,
		ObjectConceptID:  rel.ObjectConceptID,
		Grade:            grade,
		Tier:             tier,
		Confidence:       rel.Confidence,
		SupportStrength:  supportStrength,
		PromotedFrom:     rel.ID,
		PromotedAt:       time.Now(),
	}

	if err := graph.PublishRelation(ctx, nc, tenant, subjectName, rel.Type, objectName, grade, tier, rel.Confidence, supportStrength, source); err != nil {
		return nil, decision, err
	}

	return sem, decision, nil
}

func supportStrength(rel domain.CanonicalRelation) float64 {
	total := float64(rel.ExplicitSupport + rel.DiscursiveSupport)
	if total == 0 {
		return 0
	}
	return (float64(rel.ExplicitSupport)*1.0 + float64(rel.DiscursiveSupport)*0.5) / total
}
