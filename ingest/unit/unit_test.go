package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/ingest/unit"
)

func TestIndexerDropsShortNonStructuralUnits(t *testing.T) {
	idx := unit.MustNew(unit.DefaultConfig())

	item := domain.DocItem{
		ID:   "d1",
		Type: "NARRATIVE",
		Text: "Short. This sentence has well over thirty characters in it and should survive splitting.",
	}

	index := idx.Build(item)
	for _, u := range index.Units() {
		assert.GreaterOrEqual(t, len(u.Text), unit.MinChars)
	}
}

func TestIndexerKeepsShortStructuralUnits(t *testing.T) {
	idx := unit.MustNew(unit.DefaultConfig())

	item := domain.DocItem{
		ID:   "d1",
		Type: "HEADING",
		Text: "Intro",
	}

	index := idx.Build(item)
	require.Len(t, index.Units(), 1)
	assert.Equal(t, "U1", index.Units()[0].LocalID)
	assert.True(t, index.Units()[0].Structural)
}

func TestIndexStableLocalIDsAndResolve(t *testing.T) {
	idx := unit.MustNew(unit.DefaultConfig())

	item := domain.DocItem{
		ID:   "d1",
		Type: "NARRATIVE",
		Text: "This is the first sentence and it is long enough to survive. This is the second sentence and it is also long enough to survive.",
	}

	index := idx.Build(item)
	require.GreaterOrEqual(t, len(index.Units()), 2)

	u, ok := index.GetUnitByLocalID("U1")
	require.True(t, ok)
	assert.Equal(t, "U1", u.LocalID)

	_, ok = index.GetUnitByLocalID("U99")
	assert.False(t, ok)

	resolved := index.Resolve([]string{"U1", "U99", "U2"})
	assert.Len(t, resolved, 2)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := unit.New(unit.Config{MinChars: -1})
	assert.Error(t, err)
}
