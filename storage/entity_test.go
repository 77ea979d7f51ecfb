package storage

import (
	"testing"
)

func TestEntityID(t *testing.T) {
	t.Run("String returns correct format", func(t *testing.T) {
		id := EntityID{Type: EntityTypeCorefDecision, ID: "abc123"}
		expected := "coref_decision:abc123"
		if id.String() != expected {
			t.Errorf("expected %s, got %s", expected, id.String())
		}
	})

	t.Run("ParseEntityID parses valid ID", func(t *testing.T) {
		id, err := ParseEntityID("context_summary:abc123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.Type != EntityTypeContextSummary {
			t.Errorf("expected type %s, got %s", EntityTypeContextSummary, id.Type)
		}
		if id.ID != "abc123" {
			t.Errorf("expected ID abc123, got %s", id.ID)
		}
	})

	t.Run("ParseEntityID handles all types", func(t *testing.T) {
		tests := []struct {
			input    string
			expected EntityType
		}{
			{"coref_decision:123", EntityTypeCorefDecision},
			{"context_summary:456", EntityTypeContextSummary},
		}

		for _, tc := range tests {
			id, err := ParseEntityID(tc.input)
			if err != nil {
				t.Errorf("unexpected error for %s: %v", tc.input, err)
				continue
			}
			if id.Type != tc.expected {
				t.Errorf("for %s: expected type %s, got %s", tc.input, tc.expected, id.Type)
			}
		}
	})

	t.Run("ParseEntityID rejects invalid format", func(t *testing.T) {
		invalidIDs := []string{
			"invalid",
			"no-colon",
			"",
			"unknown:123",
		}

		for _, input := range invalidIDs {
			_, err := ParseEntityID(input)
			if err == nil {
				t.Errorf("expected error for %q, got nil", input)
			}
		}
	})

	t.Run("Round trip ID conversion", func(t *testing.T) {
		original := EntityID{Type: EntityTypeCorefDecision, ID: "doc42:mention7:mention9"}
		str := original.String()
		parsed, err := ParseEntityID(str)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed.Type != original.Type {
			t.Errorf("type mismatch: expected %s, got %s", original.Type, parsed.Type)
		}
		if parsed.ID != original.ID {
			t.Errorf("ID mismatch: expected %s, got %s", original.ID, parsed.ID)
		}
	})
}

func TestCorefDecisionEntry(t *testing.T) {
	t.Run("fields round-trip through the struct", func(t *testing.T) {
		d := CorefDecisionEntry{
			MentionPairKey: "doc1:m3:m9",
			Outcome:        "RESOLVED",
			ReasonCode:     "NAMED_NAMED_ACCEPTED",
			Confidence:     0.97,
		}
		if d.Outcome != "RESOLVED" {
			t.Errorf("unexpected outcome: %s", d.Outcome)
		}
		if d.Confidence <= 0 || d.Confidence > 1 {
			t.Errorf("confidence out of range: %f", d.Confidence)
		}
	})
}

func TestContextSummaryEntry(t *testing.T) {
	t.Run("fields round-trip through the struct", func(t *testing.T) {
		c := ContextSummaryEntry{
			ContextNodeID: "ctx:doc1:section2",
			TopConcepts:   []string{"concept-a", "concept-b"},
			MentionTotal:  12,
		}
		if c.ContextNodeID != "ctx:doc1:section2" {
			t.Errorf("unexpected node id: %s", c.ContextNodeID)
		}
		if len(c.TopConcepts) != 2 {
			t.Errorf("expected 2 top concepts, got %d", len(c.TopConcepts))
		}
	})
}

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"doc1:m3:m9":     "doc1_m3_m9",
		"ctx.doc-1_a":    "ctx.doc-1_a",
		"has space":      "has_space",
		"already-clean.": "already-clean.",
	}
	for input, want := range cases {
		if got := sanitizeKey(input); got != want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBucketNames(t *testing.T) {
	t.Run("Bucket names are set", func(t *testing.T) {
		if BucketCorefDecisions != "KNOWCORE_COREF_DECISIONS" {
			t.Errorf("unexpected coref decisions bucket: %s", BucketCorefDecisions)
		}
		if BucketContextSummary != "KNOWCORE_CONTEXT_SUMMARY" {
			t.Errorf("unexpected context summary bucket: %s", BucketContextSummary)
		}
	})
}
