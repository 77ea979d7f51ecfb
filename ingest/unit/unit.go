// Package unit implements the Unit Indexer (spec §4.1): it splits a
// DocItem's text on strong boundaries into stable, locally-addressable
// Units and builds the per-DocItem index the pointer-mode extraction
// passes (ingest/concept, ingest/relation) resolve "U3"-style references
// against. Grounded on source/chunker/chunker.go's Config/Validate/New
// shape and boundary-splitting idiom, generalized from token-budget
// chunking to the spec's boundary-and-minimum-length rule.
package unit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/knowcore/domain"
)

// MinChars is the minimum unit length before it is dropped, unless the
// unit is structural (a table cell or heading), which is always kept
// regardless of length (spec §4.1).
const MinChars = 30

// strongBoundary matches sentence terminators, list bullets, and table
// cell borders - the "strong boundaries" spec §4.1 splits on.
var strongBoundary = regexp.MustCompile(`(?:[.!?])\s+|\n\s*[-*•]\s+|\n\s*\d+[.)]\s+|\s*\|\s*|\n{2,}`)

// Config configures the Unit Indexer.
type Config struct {
	MinChars int
}

// DefaultConfig returns spec-default thresholds.
func DefaultConfig() Config {
	return Config{MinChars: MinChars}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MinChars < 0 {
		return fmt.Errorf("MinChars must be non-negative, got %d", c.MinChars)
	}
	return nil
}

// Indexer splits DocItems into Units and builds the lookup index the
// pointer-mode extraction contract depends on.
type Indexer struct {
	cfg Config
}

// New creates an Indexer. Falls back to DefaultConfig on a zero value.
func New(cfg Config) (*Indexer, error) {
	if cfg.MinChars == 0 {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Indexer{cfg: cfg}, nil
}

// MustNew panics on invalid config; use for known-good configurations.
func MustNew(cfg Config) *Indexer {
	idx, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return idx
}

// Index is the per-DocItem addressable unit table the pointer-mode
// extraction contract resolves local ids ("U1".."Un") against.
type Index struct {
	DocItemID string
	units     []domain.Unit
	byLocal   map[string]*domain.Unit
}

// GetUnitByLocalID resolves a pointer-mode local id to its Unit, or false
// if the id does not exist in this DocItem's index - the validator's first
// of three checks (spec §4.3).
func (ix *Index) GetUnitByLocalID(localID string) (domain.Unit, bool) {
	u, ok := ix.byLocal[localID]
	if !ok {
		return domain.Unit{}, false
	}
	return *u, true
}

// Units returns the ordered unit slice.
func (ix *Index) Units() []domain.Unit { return ix.units }

// PromptBlock renders the "U1: <text>\nU2: <text>..." block the LLM
// receives in pointer mode; the orchestrator never sends raw offsets.
func (ix *Index) PromptBlock() string {
	var b strings.Builder
	for _, u := range ix.units {
		b.WriteString(u.LocalID)
		b.WriteString(": ")
		b.WriteString(u.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// Resolve reconstructs verbatim text for a set of local ids, in the order
// given. Unknown ids are skipped, never invented.
func (ix *Index) Resolve(localIDs []string) []string {
	out := make([]string, 0, len(localIDs))
	for _, id := range localIDs {
		if u, ok := ix.GetUnitByLocalID(id); ok {
			out = append(out, u.Text)
		}
	}
	return out
}

// Build splits item.Text on strong boundaries and returns the addressable
// Index for it. A candidate unit below MinChars is dropped unless it is
// itself a TABLE or HEADING DocItem (the "structural" exception spec §4.1
// names).
func (ix *Indexer) Build(item domain.DocItem) *Index {
	structural := item.Type == "TABLE" || item.Type == "HEADING"

	raw := splitStrong(item.Text)

	index := &Index{DocItemID: item.ID, byLocal: make(map[string]*domain.Unit)}
	n := 0
	pos := 0
	for _, piece := range raw {
		trimmed := strings.TrimSpace(piece)
		start := strings.Index(item.Text[pos:], piece)
		if start >= 0 {
			start += pos
		} else {
			start = pos
		}
		end := start + len(piece)
		pos = end

		if trimmed == "" {
			continue
		}
		if len(trimmed) < ix.cfg.MinChars && !structural {
			continue
		}

		n++
		localID := fmt.Sprintf("U%d", n)
		u := domain.Unit{
			ID:         domain.NewID(),
			DocItemID:  item.ID,
			LocalID:    localID,
			Text:       trimmed,
			Start:      start,
			End:        end,
			Structural: structural,
		}
		index.units = append(index.units, u)
		index.byLocal[localID] = &index.units[len(index.units)-1]
	}

	return index
}

// splitStrong splits text on the strong boundary pattern, preserving
// pieces (not the delimiter) for downstream trimming.
func splitStrong(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return strongBoundary.Split(text, -1)
}
