package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/ingest/pipeline"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

func TestRunWithoutLLMClientStillIndexesUnitsAndRules(t *testing.T) {
	p := pipeline.New("acme", nil, "test")

	items := []domain.DocItem{
		{ID: "d1", Type: knowcore.DocItemNarrative, Text: "Systems must validate every request before processing it further today."},
		{ID: "d2", Type: knowcore.DocItemNarrative, Text: "The gateway requires a signed token for every call."},
	}

	result, err := p.Run(t.Context(), "doc1", items)
	require.NoError(t, err)

	assert.Equal(t, 2, result.DocItemCount)
	assert.Greater(t, result.UnitCount, 0)
	assert.Greater(t, result.RuleCount, 0)
	assert.Empty(t, result.LintViolations)
}

func TestRunWithNoItemsProducesEmptyResult(t *testing.T) {
	p := pipeline.New("acme", nil, "test")
	result, err := p.Run(t.Context(), "doc1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.DocItemCount)
	assert.Equal(t, 0, result.UnitCount)
}
