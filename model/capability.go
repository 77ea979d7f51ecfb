// Package model provides capability-based model selection for ingestion and
// retrieval passes. Instead of hardcoding model names, passes specify
// capabilities (concept_extraction, query_planning, synthesis) and the
// registry resolves them to available models with fallback chains.
package model

// Capability represents a semantic capability for model selection.
// Instead of specifying "gpt-4o", a pass specifies "synthesis" or
// "concept_extraction".
type Capability string

const (
	// CapabilityConceptExtraction is for Pass1 concept/assertion extraction.
	CapabilityConceptExtraction Capability = "concept_extraction"

	// CapabilityRelationExtraction is for relation extraction (llm_first/hybrid strategies).
	CapabilityRelationExtraction Capability = "relation_extraction"

	// CapabilityRuleExtraction is for normative rule and spec fact extraction.
	CapabilityRuleExtraction Capability = "rule_extraction"

	// CapabilityCorefArbitration is for the coreference engine's LLM arbiter
	// on mention pairs that fall in the gating REVIEW zone.
	CapabilityCorefArbitration Capability = "coref_arbitration"

	// CapabilityQueryPlanning is for the graph-first planner's seed-concept
	// extraction from a natural-language question.
	CapabilityQueryPlanning Capability = "query_planning"

	// CapabilitySynthesis is for composing a final answer from retrieved
	// context.
	CapabilitySynthesis Capability = "synthesis"
)

// PassCapabilities maps pipeline pass names to their default capability.
// Used when no explicit capability or model is specified.
var PassCapabilities = map[string]Capability{
	"concept":   CapabilityConceptExtraction,
	"relation":  CapabilityRelationExtraction,
	"rulefact":  CapabilityRuleExtraction,
	"coref":     CapabilityCorefArbitration,
	"planner":   CapabilityQueryPlanning,
	"retrieval": CapabilitySynthesis,
}

// CapabilityForRole returns the default capability for a given pipeline
// pass name. Returns CapabilitySynthesis as fallback for unknown passes.
func CapabilityForRole(pass string) Capability {
	if capVal, ok := PassCapabilities[pass]; ok {
		return capVal
	}
	return CapabilitySynthesis
}

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityConceptExtraction, CapabilityRelationExtraction, CapabilityRuleExtraction,
		CapabilityCorefArbitration, CapabilityQueryPlanning, CapabilitySynthesis:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for invalid values.
func ParseCapability(s string) Capability {
	capVal := Capability(s)
	if capVal.IsValid() {
		return capVal
	}
	return ""
}
