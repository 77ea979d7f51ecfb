package model

import "testing"

func TestCapabilityForRole(t *testing.T) {
	tests := []struct {
		role     string
		expected Capability
	}{
		{"concept", CapabilityConceptExtraction},
		{"relation", CapabilityRelationExtraction},
		{"rulefact", CapabilityRuleExtraction},
		{"coref", CapabilityCorefArbitration},
		{"planner", CapabilityQueryPlanning},
		{"retrieval", CapabilitySynthesis},
		// Fallback
		{"unknown-pass", CapabilitySynthesis},
		{"", CapabilitySynthesis},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got := CapabilityForRole(tt.role)
			if got != tt.expected {
				t.Errorf("CapabilityForRole(%q) = %q, want %q", tt.role, got, tt.expected)
			}
		})
	}
}

func TestCapabilityIsValid(t *testing.T) {
	tests := []struct {
		cap      Capability
		expected bool
	}{
		{CapabilityConceptExtraction, true},
		{CapabilityRelationExtraction, true},
		{CapabilityRuleExtraction, true},
		{CapabilityCorefArbitration, true},
		{CapabilityQueryPlanning, true},
		{CapabilitySynthesis, true},
		{Capability("invalid"), false},
		{Capability(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.cap), func(t *testing.T) {
			got := tt.cap.IsValid()
			if got != tt.expected {
				t.Errorf("Capability(%q).IsValid() = %v, want %v", tt.cap, got, tt.expected)
			}
		})
	}
}

func TestParseCapability(t *testing.T) {
	tests := []struct {
		input    string
		expected Capability
	}{
		{"concept_extraction", CapabilityConceptExtraction},
		{"relation_extraction", CapabilityRelationExtraction},
		{"rule_extraction", CapabilityRuleExtraction},
		{"coref_arbitration", CapabilityCorefArbitration},
		{"query_planning", CapabilityQueryPlanning},
		{"synthesis", CapabilitySynthesis},
		{"invalid", ""},
		{"", ""},
		{"SYNTHESIS", ""}, // case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseCapability(tt.input)
			if got != tt.expected {
				t.Errorf("ParseCapability(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCapabilityString(t *testing.T) {
	tests := []struct {
		cap      Capability
		expected string
	}{
		{CapabilityConceptExtraction, "concept_extraction"},
		{CapabilityRelationExtraction, "relation_extraction"},
		{CapabilityRuleExtraction, "rule_extraction"},
		{CapabilityCorefArbitration, "coref_arbitration"},
		{CapabilityQueryPlanning, "query_planning"},
		{CapabilitySynthesis, "synthesis"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.cap.String()
			if got != tt.expected {
				t.Errorf("Capability.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
