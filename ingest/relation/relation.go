// Package relation implements typed Relation Extraction (spec §4.4): the
// llm_first/hybrid/pattern_only strategies over pairs of canonical
// concepts co-occurring in a DocItem, producing TypedRelation-equivalent
// domain.CanonicalRelation records with an evidence bundle and an initial
// semantic-grade hint. Grounded on original_source's relations/*.py
// pattern_matcher+llm_claim_extractor shape, reusing the teacher's
// llm.Client.Complete capability-gated idiom.
package relation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/kerrors"
	"github.com/c360studio/knowcore/llm"
	"github.com/c360studio/knowcore/model"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// Strategy selects how relations are extracted (spec §4.4).
type Strategy string

const (
	// StrategyLLMFirst asks the LLM first and only falls back to patterns
	// when it returns nothing; recommended by spec §4.4.
	StrategyLLMFirst Strategy = "llm_first"
	// StrategyHybrid always runs both and merges.
	StrategyHybrid Strategy = "hybrid"
	// StrategyPatternOnly never calls the LLM.
	StrategyPatternOnly Strategy = "pattern_only"
)

// marker maps a textual relation marker to its closed RelationType, for the
// pattern-matching path (spec §4.4 "textual marker present" -> EXPLICIT
// grade hint).
var markers = []struct {
	pattern *regexp.Regexp
	relType knowcore.RelationType
}{
	{regexp.MustCompile(`(?i)\brequires\b`), knowcore.RelationRequires},
	{regexp.MustCompile(`(?i)\buses\b`), knowcore.RelationUses},
	{regexp.MustCompile(`(?i)\bpart of\b`), knowcore.RelationPartOf},
	{regexp.MustCompile(`(?i)\bis a (?:type|kind) of\b`), knowcore.RelationSubtypeOf},
	{regexp.MustCompile(`(?i)\bintegrates with\b`), knowcore.RelationIntegratesWith},
	{regexp.MustCompile(`(?i)\bextends\b`), knowcore.RelationExtends},
	{regexp.MustCompile(`(?i)\benables\b`), knowcore.RelationEnables},
	{regexp.MustCompile(`(?i)\breplaces\b`), knowcore.RelationReplaces},
	{regexp.MustCompile(`(?i)\bdeprecates\b`), knowcore.RelationDeprecates},
	{regexp.MustCompile(`(?i)\bprecedes\b`), knowcore.RelationPrecedes},
	{regexp.MustCompile(`(?i)\balternative to\b`), knowcore.RelationAlternativeTo},
	{regexp.MustCompile(`(?i)\bapplies to\b`), knowcore.RelationAppliesTo},
	{regexp.MustCompile(`(?i)\bgoverned by\b`), knowcore.RelationGovernedBy},
	{regexp.MustCompile(`(?i)\bcauses\b`), knowcore.RelationCauses},
	{regexp.MustCompile(`(?i)\bprevents\b`), knowcore.RelationPrevents},
	{regexp.MustCompile(`(?i)\bmitigates\b`), knowcore.RelationMitigates},
	{regexp.MustCompile(`(?i)\bdefines\b`), knowcore.RelationDefines},
	{regexp.MustCompile(`(?i)\bconflicts with\b`), knowcore.RelationConflictsWith},
}

// ConceptRef is the minimal reference the extractor needs for a
// co-occurring concept pair.
type ConceptRef struct {
	ID   string
	Name string
}

// Extractor extracts TypedRelation candidates for a DocItem's concept
// pairs.
type Extractor struct {
	client   *llm.Client
	strategy Strategy
}

// New creates a relation Extractor.
func New(client *llm.Client, strategy Strategy) *Extractor {
	if strategy == "" {
		strategy = StrategyLLMFirst
	}
	return &Extractor{client: client, strategy: strategy}
}

// llmRelationCandidate is the LLM's structured relation output.
type llmRelationCandidate struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Inferred   bool    `json:"inferred"`
}

// ExtractPair extracts a CanonicalRelation between subject and object, as
// evidenced by docText, or returns ok=false if no relation is supported.
func (e *Extractor) ExtractPair(ctx context.Context, docItemID string, subject, object ConceptRef, docText string) (domain.CanonicalRelation, bool, error) {
	patternType, patternFound := matchPattern(docText)

	switch e.strategy {
	case StrategyPatternOnly:
		if !patternFound {
			return domain.CanonicalRelation{}, false, nil
		}
		return e.buildRelation(subject, object, patternType, knowcore.ExtractionPattern, docItemID, docText, 0.75), true, nil

	case StrategyHybrid:
		llmRel, llmFound, err := e.askLLM(ctx, subject, object, docText)
		if err != nil {
			return domain.CanonicalRelation{}, false, err
		}
		if patternFound && llmFound {
			method := knowcore.ExtractionHybrid
			relType := patternType
			if llmRel.Type != "" {
				relType = knowcore.RelationType(strings.ToUpper(llmRel.Type))
			}
			return e.buildRelation(subject, object, relType, method, docItemID, docText, maxFloat(0.75, llmRel.Confidence)), true, nil
		}
		if patternFound {
			return e.buildRelation(subject, object, patternType, knowcore.ExtractionPattern, docItemID, docText, 0.75), true, nil
		}
		if llmFound {
			return e.buildRelation(subject, object, knowcore.RelationType(strings.ToUpper(llmRel.Type)), knowcore.ExtractionLLM, docItemID, docText, llmRel.Confidence), true, nil
		}
		return domain.CanonicalRelation{}, false, nil

	default: // StrategyLLMFirst
		llmRel, llmFound, err := e.askLLM(ctx, subject, object, docText)
		if err != nil {
			return domain.CanonicalRelation{}, false, err
		}
		if llmFound {
			method := knowcore.ExtractionLLM
			if llmRel.Inferred {
				method = knowcore.ExtractionInferred
			}
			return e.buildRelation(subject, object, knowcore.RelationType(strings.ToUpper(llmRel.Type)), method, docItemID, docText, llmRel.Confidence), true, nil
		}
		if patternFound {
			return e.buildRelation(subject, object, patternType, knowcore.ExtractionPattern, docItemID, docText, 0.75), true, nil
		}
		return domain.CanonicalRelation{}, false, nil
	}
}

func (e *Extractor) buildRelation(subject, object ConceptRef, relType knowcore.RelationType, method knowcore.ExtractionMethod, docItemID, docText string, confidence float64) domain.CanonicalRelation {
	if !relType.IsValid() {
		relType = knowcore.RelationAssociatedWith
	}

	rel := domain.CanonicalRelation{
		ID:               domain.NewID(),
		SubjectConceptID: subject.ID,
		Type:             relType,
		ObjectConceptID:  object.ID,
		Method:           method,
		Confidence:       confidence,
		Evidence: []domain.Evidence{{
			DocItemID: docItemID,
			Text:      docText,
			SpanStart: 0,
			SpanEnd:   len(docText),
		}},
	}

	// Initial semantic-grade hint (spec §4.4): an explicit textual marker
	// earns EXPLICIT support, an LLM inference from prose earns DISCURSIVE.
	if _, marked := matchPattern(docText); marked {
		rel.ExplicitSupport = 1
	} else {
		rel.DiscursiveSupport = 1
	}

	return rel
}

func matchPattern(text string) (knowcore.RelationType, bool) {
	for _, m := range markers {
		if m.pattern.MatchString(text) {
			return m.relType, true
		}
	}
	return "", false
}

func (e *Extractor) askLLM(ctx context.Context, subject, object ConceptRef, docText string) (llmRelationCandidate, bool, error) {
	if e.client == nil {
		return llmRelationCandidate{}, false, nil
	}

	prompt := fmt.Sprintf(
		"Given this text: %q\nWhat is the relation type (one of %s) from %q to %q, if any? "+
			"Reply strictly as JSON: {\"type\":string,\"confidence\":0-1,\"inferred\":bool} or {} if none.",
		docText, allRelationTypeNames(), subject.Name, object.Name)

	temp := 0.1
	resp, err := e.client.Complete(ctx, llm.Request{
		Capability:  string(model.CapabilityRelationExtraction),
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
		MaxTokens:   512,
	})
	if err != nil {
		return llmRelationCandidate{}, false, kerrors.Wrap("relation.askLLM", kerrors.TransientExternal, err)
	}

	raw := llm.ExtractJSON(resp.Content)
	if raw == "" {
		return llmRelationCandidate{}, false, nil
	}
	var cand llmRelationCandidate
	if json.Unmarshal([]byte(raw), &cand) != nil || cand.Type == "" {
		return llmRelationCandidate{}, false, nil
	}
	return cand, true, nil
}

func allRelationTypeNames() string {
	names := make([]string, 0, len(knowcore.AllRelationTypes()))
	for _, t := range knowcore.AllRelationTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
