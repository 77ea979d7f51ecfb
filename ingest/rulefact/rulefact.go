// Package rulefact implements the Normative Rule & Spec Fact Extractor
// (spec §4.5): pattern-first modal-marker matching for NormativeRule, and
// structural table/KV-list parsing for SpecFact, both writing through a
// canonical dedup_key with MERGE-increment semantics. Neither output type
// is traversable by the planner's graph walks - they are indexable and
// citable from synthesis only. Grounded on original_source's
// structure_parser.py and pattern_matcher.py, kept in the teacher's
// stdlib-regex extractor idiom (no pack library does modal-marker
// matching - justified stdlib).
package rulefact

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// modalMarkers maps an English modal-marker regex to its Modality
// (spec §4.5). The set is fixed; no configuration adds other languages.
var modalMarkers = []struct {
	pattern  *regexp.Regexp
	modality knowcore.Modality
}{
	{regexp.MustCompile(`(?i)\bmust not\b`), knowcore.ModalityProhibited},
	{regexp.MustCompile(`(?i)\bmust\b`), knowcore.ModalityMust},
	{regexp.MustCompile(`(?i)\bshall\b`), knowcore.ModalityShall},
	{regexp.MustCompile(`(?i)\bshould\b`), knowcore.ModalityShould},
	{regexp.MustCompile(`(?i)\bmay\b`), knowcore.ModalityMay},
	{regexp.MustCompile(`(?i)\brequired\b`), knowcore.ModalityRequired},
	{regexp.MustCompile(`(?i)\bprohibited\b|\bforbidden\b`), knowcore.ModalityProhibited},
}

// windowChars bounds how far back from a modal marker the subject-text
// window extends; the subject is read verbatim from this window, never
// invented (spec §4.5).
const windowChars = 120

// Writer accumulates NormativeRule/SpecFact records with MERGE-by-dedup_key
// semantics: a repeated extraction of the same fact increments coverage
// counters rather than duplicating the record.
type Writer struct {
	rules map[string]*domain.NormativeRule
	facts map[string]*domain.SpecFact
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{
		rules: make(map[string]*domain.NormativeRule),
		facts: make(map[string]*domain.SpecFact),
	}
}

// ExtractRules scans docText for modal markers and emits a NormativeRule
// for the first occurrence of each marker, with the subject read verbatim
// from the preceding window. Later occurrences of the same marker are not
// extracted.
func (w *Writer) ExtractRules(docItemID string, sectionID int, docText string) []domain.NormativeRule {
	var out []domain.NormativeRule

	for _, m := range modalMarkers {
		loc := m.pattern.FindStringIndex(docText)
		if loc == nil {
			continue
		}
		windowStart := loc[0] - windowChars
		if windowStart < 0 {
			windowStart = 0
		}
		subject := strings.TrimSpace(docText[windowStart:loc[0]])
		if subject == "" {
			continue
		}

		constraintValue := strings.TrimSpace(docText[loc[1]:min(len(docText), loc[1]+windowChars)])
		constraintType := detectConstraintType(constraintValue)

		dedupKey := domain.DedupKey(subject, string(m.modality), constraintValue, "")

		if existing, ok := w.rules[dedupKey]; ok {
			existing.DocCoverage++
			existing.SectionCoverage++
			continue
		}

		rule := domain.NormativeRule{
			ID:              domain.NewID(),
			DocItemID:       docItemID,
			SubjectText:     subject,
			Modality:        m.modality,
			ConstraintType:  constraintType,
			ConstraintValue: constraintValue,
			Evidence: domain.Evidence{
				DocItemID: docItemID,
				Text:      docText[loc[0]:loc[1]],
				SpanStart: loc[0],
				SpanEnd:   loc[1],
			},
			DedupKey:        dedupKey,
			DocCoverage:     1,
			SectionCoverage: 1,
		}
		w.rules[dedupKey] = &rule
		out = append(out, rule)
	}

	return out
}

func detectConstraintType(value string) knowcore.ConstraintType {
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "to") && hasDigit(lower):
		return knowcore.ConstraintRange
	case hasDigit(lower):
		return knowcore.ConstraintValue
	case strings.Contains(lower, "not") || strings.Contains(lower, "except"):
		return knowcore.ConstraintExclusion
	case strings.Contains(lower, "then") || strings.Contains(lower, "after"):
		return knowcore.ConstraintSequence
	case strings.Contains(lower, "present") || strings.Contains(lower, "include"):
		return knowcore.ConstraintPresence
	default:
		return knowcore.ConstraintProcedural
	}
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// TableRow is one parsed row from a table-structured DocItem: the first
// column is the subject, subsequent header/cell pairs become attribute/
// value SpecFacts.
type TableRow struct {
	Subject string
	Cells   map[string]string // column header -> cell value
}

// ExtractFactsFromTable emits a SpecFact per header/cell pair in each row.
func (w *Writer) ExtractFactsFromTable(docItemID string, rows []TableRow) []domain.SpecFact {
	var out []domain.SpecFact
	for _, row := range rows {
		for attr, value := range row.Cells {
			out = append(out, w.mergeFact(docItemID, row.Subject, attr, value, knowcore.SpecSourceTableRow))
		}
	}
	return out
}

// KVPair is one key/value entry from a KV-list-structured DocItem.
type KVPair struct {
	Subject string
	Key     string
	Value   string
}

// ExtractFactsFromKVList emits a SpecFact per key/value pair.
func (w *Writer) ExtractFactsFromKVList(docItemID string, pairs []KVPair) []domain.SpecFact {
	var out []domain.SpecFact
	for _, p := range pairs {
		out = append(out, w.mergeFact(docItemID, p.Subject, p.Key, p.Value, knowcore.SpecSourceKVList))
	}
	return out
}

func (w *Writer) mergeFact(docItemID, subject, attribute, value string, source knowcore.SpecStructureSource) domain.SpecFact {
	num, unit := parseNumericValue(value)
	dedupKey := domain.DedupKey(subject, attribute, value, unit)

	if existing, ok := w.facts[dedupKey]; ok {
		existing.DocCoverage++
		return *existing
	}

	fact := domain.SpecFact{
		ID:           domain.NewID(),
		DocItemID:    docItemID,
		Subject:      subject,
		Attribute:    attribute,
		Value:        value,
		ValueNumeric: num,
		Unit:         unit,
		Source:       source,
		DedupKey:     dedupKey,
		DocCoverage:  1,
	}
	w.facts[dedupKey] = &fact
	return fact
}

// parseNumericValue splits a value like "500 ms" into (500.0, "ms"), or
// returns (nil, "") if value has no leading numeric component.
func parseNumericValue(value string) (*float64, string) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, ""
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, ""
	}
	unit := ""
	if len(fields) > 1 {
		unit = strings.Join(fields[1:], " ")
	}
	return &n, unit
}

// Rules returns all accumulated NormativeRules.
func (w *Writer) Rules() []domain.NormativeRule {
	out := make([]domain.NormativeRule, 0, len(w.rules))
	for _, r := range w.rules {
		out = append(out, *r)
	}
	return out
}

// Facts returns all accumulated SpecFacts.
func (w *Writer) Facts() []domain.SpecFact {
	out := make([]domain.SpecFact, 0, len(w.facts))
	for _, f := range w.facts {
		out = append(out, *f)
	}
	return out
}

// ListBySubject filters accumulated SpecFacts by subject (case-insensitive
// exact match), the read path SPEC_FULL.md's supplemented facts service
// exposes.
func (w *Writer) ListBySubject(subject string) []domain.SpecFact {
	var out []domain.SpecFact
	lower := strings.ToLower(subject)
	for _, f := range w.facts {
		if strings.ToLower(f.Subject) == lower {
			out = append(out, *f)
		}
	}
	return out
}

// ListByDocument filters accumulated SpecFacts and NormativeRules by
// DocItemID.
func (w *Writer) ListByDocument(docItemID string) ([]domain.NormativeRule, []domain.SpecFact) {
	var rules []domain.NormativeRule
	var facts []domain.SpecFact
	for _, r := range w.rules {
		if r.DocItemID == docItemID {
			rules = append(rules, *r)
		}
	}
	for _, f := range w.facts {
		if f.DocItemID == docItemID {
			facts = append(facts, *f)
		}
	}
	return rules, facts
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
