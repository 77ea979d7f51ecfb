// Package knowcore provides the closed vocabulary of relation types, edge
// predicates, and rhetorical/modal type tags used by the ingestion and
// retrieval core.
//
// The vocabulary is split into two layers, mirroring the data model's
// separation of semantics from navigation:
//
//   - Semantic predicates: RelationType, AssertionType, SemanticGrade,
//     DefensibilityTier — the closed sets that govern what a
//     SemanticRelation or RawAssertion may claim.
//   - Navigation predicates: the structural edge/property names used by
//     ContextNode and MENTIONED_IN records, which the graph lint
//     (ingest/navigation) forbids from ever mixing with the semantic set.
//
// # Semstreams integration
//
// Predicates are registered with semstreams' vocabulary package in init()
// using vocabulary.Register()/vocabulary.WithIRI(), the same dotted
// notation and IRI-export discipline the rest of the pack uses, without
// carrying over a software-development ontology that has no analogue in
// this domain.
//
// Usage:
//
//	triples := []message.Triple{
//	    {Subject: relationID, Predicate: knowcore.PredicateRelationType, Object: string(knowcore.RelationRequires)},
//	    {Subject: relationID, Predicate: knowcore.PredicateDefensibilityTier, Object: string(knowcore.TierStrict)},
//	}
package knowcore
