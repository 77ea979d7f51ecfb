package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/knowcore/ingest/navigation"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

func TestRecordMentionAccumulatesCount(t *testing.T) {
	b := navigation.NewBuilder("tenant", false)
	b.RecordMention("concept1", "ctx1", knowcore.ContextSection)
	b.RecordMention("concept1", "ctx1", knowcore.ContextSection)
	b.RecordMention("concept1", "ctx2", knowcore.ContextSection)

	edges := b.Finalize()
	require.Len(t, edges, 2)

	for _, e := range edges {
		if e.ContextNodeID == "ctx1" {
			assert.Equal(t, 2, e.Count)
			assert.Equal(t, 1.0, e.Weight)
		}
		if e.ContextNodeID == "ctx2" {
			// concept1 is the only concept in ctx2, so it is that
			// context's maximum.
			assert.Equal(t, 1, e.Count)
			assert.Equal(t, 1.0, e.Weight)
		}
	}
}

func TestNewWindowContextCapsAtMax(t *testing.T) {
	_, ok := navigation.NewWindowContext("tenant", "doc1", "w50", nil, navigation.MaxWindowContextsPerDoc)
	assert.False(t, ok)

	_, ok = navigation.NewWindowContext("tenant", "doc1", "w0", nil, 0)
	assert.True(t, ok)
}

func TestLintNAV001CatchesForbiddenEdge(t *testing.T) {
	edges := []navigation.LintEdge{
		{Predicate: "CO_OCCURS", FromIsContext: false, ToIsContext: false},
	}
	violations := navigation.Lint(edges, nil)
	require.Len(t, violations, 1)
	assert.Equal(t, "NAV-001", violations[0].Rule)
}

func TestLintNAV002And003CatchContextBoundedSemanticEdges(t *testing.T) {
	edges := []navigation.LintEdge{
		{Predicate: string(knowcore.RelationRequires), ToIsContext: true},
		{Predicate: string(knowcore.RelationRequires), FromIsContext: true},
	}
	violations := navigation.Lint(edges, nil)
	require.Len(t, violations, 2)
}

func TestLintNAV004CatchesMissingCountOrFirstSeen(t *testing.T) {
	violations := navigation.Lint(nil, []navigation.LintMentionedIn{{Count: 0}})
	require.Len(t, violations, 1)
	assert.Equal(t, "NAV-004", violations[0].Rule)
}

func TestLintCleanGraphHasNoViolations(t *testing.T) {
	edges := []navigation.LintEdge{{Predicate: string(knowcore.RelationRequires)}}
	violations := navigation.Lint(edges, nil)
	assert.Empty(t, violations)
}
