// Package concept implements the Concept & Assertion Extractor (spec
// §4.3): pointer-based LLM extraction of concept/assertion candidates per
// DocItem, the three-level validator, semantic linking, and the bounded
// per-DocItem worker pool. Grounded on original_source's
// llm_claim_extractor.py translated into the teacher's llm.Client.Complete
// capability-gated idiom, with golang.org/x/sync/errgroup bounding
// concurrency the way processor/task-dispatcher/component.go bounds its
// semaphore.
package concept

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/ingest/promotion"
	"github.com/c360studio/knowcore/ingest/unit"
	"github.com/c360studio/knowcore/kerrors"
	"github.com/c360studio/knowcore/llm"
	"github.com/c360studio/knowcore/model"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// DefaultWorkerPoolSize is the default bounded concurrency for per-DocItem
// extraction (spec §4.3 "bounded worker pool default 8 per-DocItem").
const DefaultWorkerPoolSize = 8

// NoConceptMatchRefinementThreshold triggers the Pass1.2b iterative
// refinement round when the no_concept_match rate exceeds this fraction and
// there are more than RefinementMinCount unresolved assertions.
const (
	NoConceptMatchRefinementThreshold = 0.10
	RefinementMinCount                = 20
)

// pointerAssertion is the shape the LLM returns per extracted claim in
// pointer mode (spec §4.3): a label, type, the unit_id it was read from,
// and a confidence - never raw offsets.
type pointerAssertion struct {
	Label      string  `json:"label"`
	Type       string  `json:"type"`
	UnitID     string  `json:"unit_id"`
	Confidence float64 `json:"confidence"`
}

type extractionResponse struct {
	Assertions []pointerAssertion `json:"assertions"`
}

// Extractor runs the 8-step concept/assertion pipeline over DocItems.
type Extractor struct {
	client       *llm.Client
	indexer      *unit.Indexer
	workerPool   int
	knownConcepts map[string]string // canonical name (lowercase) -> concept id, for semantic linking
}

// New creates an Extractor. workerPool <= 0 uses DefaultWorkerPoolSize.
func New(client *llm.Client, indexer *unit.Indexer, workerPool int) *Extractor {
	if workerPool <= 0 {
		workerPool = DefaultWorkerPoolSize
	}
	return &Extractor{
		client:        client,
		indexer:       indexer,
		workerPool:    workerPool,
		knownConcepts: make(map[string]string),
	}
}

// RegisterConcept seeds the semantic-linking index with a previously
// canonicalized concept, so new assertions can link to it by lexical
// trigger instead of minting a duplicate.
func (e *Extractor) RegisterConcept(canonicalName, conceptID string) {
	e.knownConcepts[strings.ToLower(canonicalName)] = conceptID
}

// Result is one DocItem's extraction outcome.
type Result struct {
	DocItemID      string
	Assertions     []domain.RawAssertion
	NoConceptCount int
}

// ExtractBatch runs extraction for every DocItem concurrently, bounded by
// the worker pool (spec §5 "bounded worker pool default 8 per-DocItem").
func (e *Extractor) ExtractBatch(ctx context.Context, items []domain.DocItem) ([]Result, error) {
	results := make([]Result, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerPool)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := e.Extract(ctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Extract runs the per-DocItem pipeline: (1) build the unit index, (2)
// request pointer-based candidates from the LLM, (3) validate every
// candidate through the three-level validator, (4) apply the promotion
// floor, (5) resolve semantic links, (6) flag no_concept_match, (7) anchor
// to the DocItem, (8) return for Pass1.2b refinement consideration.
func (e *Extractor) Extract(ctx context.Context, item domain.DocItem) (Result, error) {
	index := e.indexer.Build(item)
	if len(index.Units()) == 0 {
		return Result{DocItemID: item.ID}, nil
	}

	if e.client == nil {
		return Result{DocItemID: item.ID}, nil
	}

	prompt := fmt.Sprintf(
		"Identify concepts and assertions in the following numbered text units. "+
			"For each, reply with the unit_id it was read from - never invent or paraphrase text. "+
			"Reply strictly as JSON: {\"assertions\":[{\"label\":string,\"type\":string,\"unit_id\":string,\"confidence\":0-1}]}\n\n%s",
		index.PromptBlock())

	temp := 0.1
	resp, err := e.client.Complete(ctx, llm.Request{
		Capability:  string(model.CapabilityConceptExtraction),
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
		MaxTokens:   2048,
	})
	if err != nil {
		return Result{}, kerrors.Wrap("concept.Extract", kerrors.TransientExternal, err)
	}

	raw := llm.ExtractJSON(resp.Content)
	var parsed extractionResponse
	if raw == "" || json.Unmarshal([]byte(raw), &parsed) != nil {
		return Result{DocItemID: item.ID}, nil
	}

	result := Result{DocItemID: item.ID}
	for _, cand := range parsed.Assertions {
		a, ok := e.validate(item, index, cand)
		if !ok {
			continue
		}
		if a.Confidence < promotion.AbsoluteFloor {
			continue
		}
		if a.ConceptID == "" {
			a.NoConceptMatch = true
			result.NoConceptCount++
		}
		result.Assertions = append(result.Assertions, a)
	}

	return result, nil
}

// validate implements the three-level pointer validator (spec §4.3): the
// unit_id must exist in the DocItem's index, the label must share at least
// two tokens with the unit's verbatim text, and the assertion type is
// checked against the closed AssertionType set (see detectAssertionType).
func (e *Extractor) validate(item domain.DocItem, index *unit.Index, cand pointerAssertion) (domain.RawAssertion, bool) {
	u, ok := index.GetUnitByLocalID(cand.UnitID)
	if !ok {
		return domain.RawAssertion{}, false
	}

	if sharedTokens(cand.Label, u.Text) < 2 {
		return domain.RawAssertion{}, false
	}

	assertionType := detectAssertionType(u.Text, cand.Type)

	a := domain.RawAssertion{
		ID:         domain.NewID(),
		DocItemID:  item.ID,
		UnitID:     u.ID,
		Label:      cand.Label,
		Type:       assertionType,
		Text:       u.Text,
		Confidence: cand.Confidence,
	}

	if id, ok := e.knownConcepts[strings.ToLower(cand.Label)]; ok {
		a.ConceptID = id
	}

	return a, true
}

func sharedTokens(a, b string) int {
	setB := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(b)) {
		setB[t] = true
	}
	count := 0
	for _, t := range strings.Fields(strings.ToLower(a)) {
		if setB[t] {
			count++
		}
	}
	return count
}

// detectAssertionType is the validator's third level: a declared type in
// the closed AssertionType set is kept as is; any other declared type is
// replaced by one detected from cue words in the unit text, FACTUAL when
// no cue matches.
func detectAssertionType(text, declared string) knowcore.AssertionType {
	t := knowcore.AssertionType(strings.ToUpper(declared))
	switch t {
	case knowcore.AssertionDefinitional, knowcore.AssertionPrescriptive, knowcore.AssertionCausal,
		knowcore.AssertionComparative, knowcore.AssertionFactual, knowcore.AssertionConditional,
		knowcore.AssertionPermissive, knowcore.AssertionProcedural:
		return t
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, " is defined as ") || strings.Contains(lower, " means "):
		return knowcore.AssertionDefinitional
	case strings.Contains(lower, "must ") || strings.Contains(lower, "shall ") || strings.Contains(lower, "required"):
		return knowcore.AssertionPrescriptive
	case strings.Contains(lower, "because") || strings.Contains(lower, "causes") || strings.Contains(lower, "leads to"):
		return knowcore.AssertionCausal
	case strings.Contains(lower, "than") || strings.Contains(lower, "compared to"):
		return knowcore.AssertionComparative
	case strings.Contains(lower, "if ") && strings.Contains(lower, "then"):
		return knowcore.AssertionConditional
	case strings.Contains(lower, "may ") || strings.Contains(lower, "can optionally"):
		return knowcore.AssertionPermissive
	case strings.Contains(lower, "first,") || strings.Contains(lower, "step "):
		return knowcore.AssertionProcedural
	default:
		return knowcore.AssertionFactual
	}
}

// NeedsRefinement reports whether the aggregate no_concept_match rate
// across results justifies a Pass1.2b iterative refinement round (spec
// §4.3 step 8: "if no_concept_match rate>10% and count>20").
func NeedsRefinement(results []Result) bool {
	total, noMatch := 0, 0
	for _, r := range results {
		total += len(r.Assertions)
		noMatch += r.NoConceptCount
	}
	if total == 0 {
		return false
	}
	return noMatch > RefinementMinCount && float64(noMatch)/float64(total) > NoConceptMatchRefinementThreshold
}
