// Package pipeline orchestrates the ingestion DAG spec §5 describes:
// Pass0 (unit indexing) -> Pass1 (concept & assertion extraction) ->
// relation/rule extraction -> promotion -> navigation -> graph lint. The
// Pass0.5 coreference engine is carried on the Pipeline but Run does not
// invoke it. Grounded on processor/task-dispatcher/component.go's
// semaphore-bounded lifecycle shape, generalized from task dispatch to
// per-DocItem pass scheduling; Run acquires a golang.org/x/sync/semaphore
// slot per DocItem but walks the DocItems one at a time.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/ingest/concept"
	"github.com/c360studio/knowcore/ingest/coref"
	"github.com/c360studio/knowcore/ingest/navigation"
	"github.com/c360studio/knowcore/ingest/promotion"
	"github.com/c360studio/knowcore/ingest/relation"
	"github.com/c360studio/knowcore/ingest/rulefact"
	"github.com/c360studio/knowcore/ingest/unit"
	"github.com/c360studio/knowcore/storage"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// DefaultConcurrency bounds per-DocItem/chunk/cluster work across the
// pipeline (spec §5 "bounded worker pool default 8").
const DefaultConcurrency = 8

// Pipeline wires every ingestion pass's component.
type Pipeline struct {
	Unit       *unit.Indexer
	// Coref is not invoked by Run: Run has no per-DocItem mention span
	// detection (distinct from the assertion labels Pass1 produces) to
	// build the surface-form pairs GateNamedNamed/GatePronoun gate on, and
	// RawAssertion.ConceptID is not canonicalized through coreference chains.
	Coref      *coref.Engine
	Concept    *concept.Extractor
	Relation   *relation.Extractor
	RuleFacts  *rulefact.Writer
	Tenant     string
	NATS       *natsclient.Client
	Source     string
	Concurrency int
	// Cache holds the ephemeral NATS KV caches (coref decisions, context
	// summaries). Nil disables context-summary caching.
	Cache *storage.Store
}

// New creates a Pipeline with the given components. A nil component
// disables that pass; Run degrades gracefully (spec §7
// PermissionDenied/Abstain aside, a disabled pass is not an error).
func New(tenant string, nc *natsclient.Client, source string) *Pipeline {
	return &Pipeline{
		Unit:        unit.MustNew(unit.DefaultConfig()),
		RuleFacts:   rulefact.NewWriter(),
		Tenant:      tenant,
		NATS:        nc,
		Source:      source,
		Concurrency: DefaultConcurrency,
	}
}

// Result summarizes one ingestion run across a document's DocItems.
type Result struct {
	DocItemCount      int
	UnitCount         int
	AssertionCount    int
	NoConceptMatchCount int
	RuleCount         int
	FactCount         int
	RelationCount     int
	PromotedCount     int
	LintViolations    []navigation.Violation
}

// Run executes the full DAG over items: Pass0 unit indexing for every
// item, Pass1 concept/assertion extraction (one DocItem at a time), rule &
// fact extraction, a naive adjacency-based relation pass over
// co-occurring assertions, promotion, navigation edge accumulation, and a
// final lint pass.
func (p *Pipeline) Run(ctx context.Context, docID string, items []domain.DocItem) (*Result, error) {
	result := &Result{DocItemCount: len(items)}

	sem := semaphore.NewWeighted(int64(p.Concurrency))
	navBuilder := navigation.NewBuilder(p.Tenant, false)

	docCtx := navigation.NewDocumentContext(p.Tenant, docID, docItemIDs(items))
	contextByID := map[string]domain.ContextNode{docCtx.ID: docCtx}
	conceptByID := make(map[string]domain.CanonicalConcept)

	var allAssertions []domain.RawAssertion

	for _, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("acquire pass slot: %w", err)
		}

		index := p.Unit.Build(item)
		result.UnitCount += len(index.Units())

		if p.RuleFacts != nil {
			rules := p.RuleFacts.ExtractRules(item.ID, 0, item.Text)
			result.RuleCount += len(rules)
		}

		if p.Concept != nil {
			extracted, err := p.Concept.Extract(ctx, item)
			sem.Release(1)
			if err != nil {
				return nil, fmt.Errorf("concept extraction for %s: %w", item.ID, err)
			}
			result.AssertionCount += len(extracted.Assertions)
			result.NoConceptMatchCount += extracted.NoConceptCount
			allAssertions = append(allAssertions, extracted.Assertions...)

			sectionCtx := navigation.NewSectionContext(p.Tenant, docCtx.ID, item.ID, []string{item.ID})
			contextByID[sectionCtx.ID] = sectionCtx
			for _, a := range extracted.Assertions {
				if a.ConceptID == "" {
					continue
				}
				navBuilder.RecordMention(a.ConceptID, sectionCtx.ID, sectionCtx.Kind)
				navBuilder.RecordMention(a.ConceptID, docCtx.ID, docCtx.Kind)
			}
		} else {
			sem.Release(1)
		}
	}

	if p.Relation != nil {
		rels := p.buildRelations(ctx, items, allAssertions, conceptByID)
		result.RelationCount = len(rels)
		for _, rel := range rels {
			promoted, decision, err := promotion.Promote(ctx, p.NATS, p.Tenant, rel, rel.SubjectConceptID, rel.ObjectConceptID, p.Source)
			if err != nil {
				return nil, fmt.Errorf("promote relation: %w", err)
			}
			if decision == knowcore.PromotionPromote && promoted != nil {
				result.PromotedCount++
			}
		}
	}

	if err := navBuilder.Publish(ctx, p.NATS, contextByID, conceptByID, p.Source); err != nil {
		return nil, fmt.Errorf("publish navigation edges: %w", err)
	}

	if p.Cache != nil {
		if err := navBuilder.CacheSummaries(ctx, p.Cache, conceptByID); err != nil {
			return nil, fmt.Errorf("cache context summaries: %w", err)
		}
	}

	result.LintViolations = navigation.Lint(nil, mentionsForLint(navBuilder))

	if p.RuleFacts != nil {
		result.FactCount = len(p.RuleFacts.Facts())
	}

	return result, nil
}

func (p *Pipeline) buildRelations(ctx context.Context, items []domain.DocItem, assertions []domain.RawAssertion, conceptByID map[string]domain.CanonicalConcept) []domain.CanonicalRelation {
	var out []domain.CanonicalRelation
	byDocItem := make(map[string][]domain.RawAssertion)
	for _, a := range assertions {
		byDocItem[a.DocItemID] = append(byDocItem[a.DocItemID], a)
	}

	for _, item := range items {
		group := byDocItem[item.ID]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].ConceptID == "" || group[j].ConceptID == "" || group[i].ConceptID == group[j].ConceptID {
					continue
				}
				subject := relation.ConceptRef{ID: group[i].ConceptID, Name: group[i].Label}
				object := relation.ConceptRef{ID: group[j].ConceptID, Name: group[j].Label}
				rel, ok, err := p.Relation.ExtractPair(ctx, item.ID, subject, object, item.Text)
				if err != nil || !ok {
					continue
				}
				out = append(out, rel)
			}
		}
	}
	return out
}

func docItemIDs(items []domain.DocItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func mentionsForLint(b *navigation.Builder) []navigation.LintMentionedIn {
	var out []navigation.LintMentionedIn
	for _, edge := range b.Finalize() {
		out = append(out, navigation.LintMentionedIn{Count: edge.Count, FirstSeen: edge.FirstSeen})
	}
	return out
}
