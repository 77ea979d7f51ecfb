package rulefact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/knowcore/ingest/rulefact"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

func TestExtractRulesFindsModalMarker(t *testing.T) {
	w := rulefact.NewWriter()

	rules := w.ExtractRules("d1", 1, "The ingestion pipeline must complete within 500 ms of receipt.")
	require.Len(t, rules, 1)
	assert.Equal(t, knowcore.ModalityMust, rules[0].Modality)
	assert.NotEmpty(t, rules[0].SubjectText)
	assert.NotEmpty(t, rules[0].DedupKey)
}

func TestExtractRulesMergesDuplicateByDedupKey(t *testing.T) {
	w := rulefact.NewWriter()

	text := "The ingestion pipeline must complete within 500 ms of receipt."
	w.ExtractRules("d1", 1, text)
	w.ExtractRules("d2", 1, text)

	rules := w.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, 2, rules[0].DocCoverage)
}

func TestExtractFactsFromTableParsesNumericValue(t *testing.T) {
	w := rulefact.NewWriter()

	rows := []rulefact.TableRow{
		{Subject: "ingest timeout", Cells: map[string]string{"max_duration": "500 ms"}},
	}
	facts := w.ExtractFactsFromTable("d1", rows)
	require.Len(t, facts, 1)
	require.NotNil(t, facts[0].ValueNumeric)
	assert.Equal(t, 500.0, *facts[0].ValueNumeric)
	assert.Equal(t, "ms", facts[0].Unit)
}

func TestExtractFactsFromKVListAndListBySubject(t *testing.T) {
	w := rulefact.NewWriter()

	pairs := []rulefact.KVPair{
		{Subject: "retry_policy", Key: "max_attempts", Value: "2"},
	}
	w.ExtractFactsFromKVList("d1", pairs)

	found := w.ListBySubject("retry_policy")
	require.Len(t, found, 1)
	assert.Equal(t, "max_attempts", found[0].Attribute)
}

func TestListByDocumentFiltersBothKinds(t *testing.T) {
	w := rulefact.NewWriter()
	w.ExtractRules("d1", 1, "The system shall retry at most twice.")
	w.ExtractFactsFromKVList("d1", []rulefact.KVPair{{Subject: "s", Key: "k", Value: "v"}})

	rules, facts := w.ListByDocument("d1")
	assert.Len(t, rules, 1)
	assert.Len(t, facts, 1)
}
