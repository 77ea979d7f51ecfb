package concept_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/ingest/concept"
	"github.com/c360studio/knowcore/ingest/unit"
)

func TestExtractWithoutClientReturnsEmpty(t *testing.T) {
	idx := unit.MustNew(unit.DefaultConfig())
	e := concept.New(nil, idx, 0)

	item := domain.DocItem{ID: "d1", Type: "NARRATIVE", Text: "A sentence long enough to be a unit candidate here."}
	result, err := e.Extract(t.Context(), item)
	assert.NoError(t, err)
	assert.Empty(t, result.Assertions)
}

func TestExtractBatchBoundedConcurrency(t *testing.T) {
	idx := unit.MustNew(unit.DefaultConfig())
	e := concept.New(nil, idx, 2)

	items := []domain.DocItem{
		{ID: "d1", Type: "NARRATIVE", Text: "First document narrative text that is long enough."},
		{ID: "d2", Type: "NARRATIVE", Text: "Second document narrative text that is long enough."},
		{ID: "d3", Type: "NARRATIVE", Text: "Third document narrative text that is long enough."},
	}
	results, err := e.ExtractBatch(t.Context(), items)
	assert.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestNeedsRefinementBelowThreshold(t *testing.T) {
	results := []concept.Result{
		{Assertions: make([]domain.RawAssertion, 100), NoConceptCount: 5},
	}
	assert.False(t, concept.NeedsRefinement(results))
}

func TestNeedsRefinementAboveThreshold(t *testing.T) {
	results := []concept.Result{
		{Assertions: make([]domain.RawAssertion, 100), NoConceptCount: 25},
	}
	assert.True(t, concept.NeedsRefinement(results))
}
