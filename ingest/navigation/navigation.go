// Package navigation implements the Navigation Layer and its graph lint
// (spec §4.7): building DocumentContext/SectionContext/(optional)
// WindowContext nodes, MERGE-accumulating MENTIONED_IN edges with a
// post-pass weight recomputation and per-concept mention budget, and the
// four NAV-00x lint rules a post-ingestion run treats as a hard error.
// Grounded on original_source's navigation_layer_builder.py/graph_lint.py,
// writing through graph.PublishMentionedIn/PublishConcept (the teacher's
// NATS-triple publish helpers, dead until this package called them).
package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/graph"
	"github.com/c360studio/knowcore/storage"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// DefaultMentionBudget caps MENTIONED_IN edges per concept, pruning the
// lowest-weight edges beyond it (spec §4.7: default 100).
const DefaultMentionBudget = 100

// MaxWindowContextsPerDoc caps WindowContext creation when enabled (spec
// §4.7: off by default, capped 50/doc).
const MaxWindowContextsPerDoc = 50

// Builder accumulates MENTIONED_IN edges across a document's concept
// mentions before the per-document weight recomputation pass.
type Builder struct {
	tenant        string
	mentions      map[string]map[string]*domain.MentionedIn // conceptID -> contextNodeID -> edge
	mentionBudget int
	windowEnabled bool
}

// NewBuilder creates a navigation Builder.
func NewBuilder(tenant string, windowEnabled bool) *Builder {
	return &Builder{
		tenant:        tenant,
		mentions:      make(map[string]map[string]*domain.MentionedIn),
		mentionBudget: DefaultMentionBudget,
		windowEnabled: windowEnabled,
	}
}

// NewDocumentContext creates the single DocumentContext node for a
// document (spec §4.7: "1/doc").
func NewDocumentContext(tenant, docID string, docItemIDs []string) domain.ContextNode {
	return domain.ContextNode{
		ID:         domain.NewID(),
		TenantID:   tenant,
		Kind:       knowcore.ContextDocument,
		LocalID:    docID,
		DocItemIDs: docItemIDs,
	}
}

// NewSectionContext creates a SectionContext node (spec §4.7: "~5-20/doc").
func NewSectionContext(tenant, parentID, sectionID string, docItemIDs []string) domain.ContextNode {
	return domain.ContextNode{
		ID:         domain.NewID(),
		TenantID:   tenant,
		Kind:       knowcore.ContextSection,
		LocalID:    sectionID,
		ParentID:   parentID,
		DocItemIDs: docItemIDs,
	}
}

// NewWindowContext creates an optional WindowContext node, returning
// ok=false once the zero-based idx reaches MaxWindowContextsPerDoc for
// this document.
func NewWindowContext(tenant, parentID, windowID string, docItemIDs []string, idx int) (domain.ContextNode, bool) {
	if idx >= MaxWindowContextsPerDoc {
		return domain.ContextNode{}, false
	}
	return domain.ContextNode{
		ID:         domain.NewID(),
		TenantID:   tenant,
		Kind:       knowcore.ContextWindow,
		LocalID:    windowID,
		ParentID:   parentID,
		DocItemIDs: docItemIDs,
	}, true
}

// RecordMention MERGE-accumulates one concept mention within a context
// node: increments count, stamps first_seen only on first creation (spec
// §4.7).
func (b *Builder) RecordMention(conceptID, contextNodeID string, kind knowcore.ContextNodeKind) {
	byContext, ok := b.mentions[conceptID]
	if !ok {
		byContext = make(map[string]*domain.MentionedIn)
		b.mentions[conceptID] = byContext
	}
	edge, ok := byContext[contextNodeID]
	if !ok {
		edge = &domain.MentionedIn{
			ConceptID:     conceptID,
			ContextNodeID: contextNodeID,
			FirstSeen:     time.Now(),
		}
		byContext[contextNodeID] = edge
	}
	edge.Count++
	_ = kind
}

// Finalize recomputes weight = count / max_count_per_context for every
// accumulated edge (the maximum is taken over all concepts mentioned in
// that context), then applies the per-concept mention budget, pruning the
// lowest-weight edges beyond it (spec §4.7).
func (b *Builder) Finalize() []domain.MentionedIn {
	maxByContext := make(map[string]int)
	for _, byContext := range b.mentions {
		for contextNodeID, edge := range byContext {
			if edge.Count > maxByContext[contextNodeID] {
				maxByContext[contextNodeID] = edge.Count
			}
		}
	}
	var out []domain.MentionedIn
	for _, byContext := range b.mentions {
		edges := make([]*domain.MentionedIn, 0, len(byContext))
		for contextNodeID, edge := range byContext {
			maxCount := maxByContext[contextNodeID]
			if maxCount == 0 {
				continue
			}
			edge.Weight = float64(edge.Count) / float64(maxCount)
			edges = append(edges, edge)
		}
		edges = pruneToBudget(edges, b.mentionBudget)
		for _, e := range edges {
			out = append(out, *e)
		}
	}
	return out
}

func pruneToBudget(edges []*domain.MentionedIn, budget int) []*domain.MentionedIn {
	if len(edges) <= budget {
		return edges
	}
	// Simple selection: keep the highest-weight `budget` edges.
	sorted := append([]*domain.MentionedIn{}, edges...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Weight > sorted[i].Weight {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	return sorted[:budget]
}

// Publish publishes every finalized MENTIONED_IN edge and its concept to
// the graph.
func (b *Builder) Publish(ctx context.Context, nc *natsclient.Client, contextByID map[string]domain.ContextNode, conceptByID map[string]domain.CanonicalConcept, source string) error {
	for _, edge := range b.Finalize() {
		ctxNode, ok := contextByID[edge.ContextNodeID]
		if !ok {
			continue
		}
		concept, ok := conceptByID[edge.ConceptID]
		if !ok {
			continue
		}
		if err := graph.PublishConcept(ctx, nc, b.tenant, concept.CanonicalName, concept.EntityType, concept.QualityScore, source); err != nil {
			return err
		}
		if err := graph.PublishMentionedIn(ctx, nc, b.tenant, ctxNode.Kind, ctxNode.LocalID, concept.CanonicalName, edge.Count, edge.Weight, edge.FirstSeen, source); err != nil {
			return err
		}
	}
	return nil
}

// TopConceptsPerSummary caps how many concept names a cached context
// summary retains, ordered by accumulated mention weight.
const TopConceptsPerSummary = 10

// CacheSummaries rolls up each context node's finalized mentions into a
// storage.ContextSummaryEntry so retrieval's seed-concept fallback and
// repeat queries against the same document skip recomputing it (spec §4.7
// "context node's rolled-up concept-mention summary").
func (b *Builder) CacheSummaries(ctx context.Context, store *storage.Store, conceptByID map[string]domain.CanonicalConcept) error {
	type scored struct {
		name   string
		weight float64
	}
	byContext := make(map[string][]scored)
	total := make(map[string]int)

	for _, edge := range b.Finalize() {
		concept, ok := conceptByID[edge.ConceptID]
		if !ok {
			continue
		}
		byContext[edge.ContextNodeID] = append(byContext[edge.ContextNodeID], scored{name: concept.CanonicalName, weight: edge.Weight})
		total[edge.ContextNodeID] += edge.Count
	}

	for contextNodeID, concepts := range byContext {
		for i := 0; i < len(concepts); i++ {
			for j := i + 1; j < len(concepts); j++ {
				if concepts[j].weight > concepts[i].weight {
					concepts[i], concepts[j] = concepts[j], concepts[i]
				}
			}
		}
		top := make([]string, 0, TopConceptsPerSummary)
		for i, c := range concepts {
			if i >= TopConceptsPerSummary {
				break
			}
			top = append(top, c.name)
		}
		if err := store.PutContextSummary(ctx, &storage.ContextSummaryEntry{
			ContextNodeID: contextNodeID,
			TopConcepts:   top,
			MentionTotal:  total[contextNodeID],
		}); err != nil {
			return fmt.Errorf("navigation: cache context summary %s: %w", contextNodeID, err)
		}
	}
	return nil
}

// Violation is one graph-lint failure.
type Violation struct {
	Rule    string
	Message string
}

// LintEdge is the minimal shape the lint rules need for either a semantic
// relation edge or a navigation edge, independent of which graph-store
// client supplied it.
type LintEdge struct {
	Predicate  string
	FromIsContext bool
	ToIsContext   bool
}

// LintMentionedIn is the minimal shape NAV-004 checks.
type LintMentionedIn struct {
	Count     int
	FirstSeen time.Time
}

// Lint runs the four NAV-00x rules (spec §4.7):
//
//	NAV-001: no forbidden navigation edge (CO_OCCURS/APPEARS_WITH/NEAR) between concepts.
//	NAV-002: no semantic relation terminates on a ContextNode.
//	NAV-003: no semantic relation originates from a ContextNode.
//	NAV-004: every MENTIONED_IN edge has count>0 and a non-zero first_seen.
func Lint(edges []LintEdge, mentions []LintMentionedIn) []Violation {
	var violations []Violation

	for _, e := range edges {
		if knowcore.ForbiddenNavigationEdges[e.Predicate] && !e.FromIsContext && !e.ToIsContext {
			violations = append(violations, Violation{
				Rule:    "NAV-001",
				Message: fmt.Sprintf("forbidden navigation edge %q found between two concepts", e.Predicate),
			})
		}
		isSemantic := !knowcore.ForbiddenNavigationEdges[e.Predicate] && e.Predicate != "MENTIONED_IN"
		if isSemantic && e.ToIsContext {
			violations = append(violations, Violation{Rule: "NAV-002", Message: fmt.Sprintf("semantic edge %q terminates on a ContextNode", e.Predicate)})
		}
		if isSemantic && e.FromIsContext {
			violations = append(violations, Violation{Rule: "NAV-003", Message: fmt.Sprintf("semantic edge %q originates from a ContextNode", e.Predicate)})
		}
	}

	for i, m := range mentions {
		if m.Count <= 0 || m.FirstSeen.IsZero() {
			violations = append(violations, Violation{Rule: "NAV-004", Message: fmt.Sprintf("mention edge %d missing count or first_seen", i)})
		}
	}

	return violations
}
