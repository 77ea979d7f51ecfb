// Package coref implements the Coreference Engine (spec §4.2): pronoun and
// Named/Named gating, REVIEW-zone LLM arbitration, batching for long
// documents, and the decision cache that makes re-ingesting an unchanged
// document idempotent. Grounded on original_source's pass05_coref.py
// batching/gating/arbiter shape, translated into the teacher's
// llm.Client.Complete-gated extractor idiom (ingest/concept,
// ingest/relation share the same call contract).
package coref

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/kerrors"
	"github.com/c360studio/knowcore/llm"
	"github.com/c360studio/knowcore/model"
	"github.com/c360studio/knowcore/storage"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// Thresholds mirrors config.IngestConfig's coref fields so this package has
// no import-time dependency on the config package's concrete type.
type Thresholds struct {
	PronounConfidenceFloor  float64
	PronounSentenceDistance int
	PronounCharDistance     int
	NamedRejectBelow        float64
	NamedAcceptAbove        float64
	NamedJaccardAccept      float64
	BatchThresholdChars     int
	BatchOverlapChars       int
}

// Engine resolves coreference within a document version.
type Engine struct {
	thresholds Thresholds
	client     *llm.Client
	registry   *model.Registry
	cache      *storage.Store
	arbiterMu  map[string]arbiterResult
}

type arbiterResult struct {
	sameEntity bool
	confidence float64
	abstain    bool
}

// New creates a coreference Engine.
func New(th Thresholds, client *llm.Client, registry *model.Registry, cache *storage.Store) *Engine {
	return &Engine{
		thresholds: th,
		client:     client,
		registry:   registry,
		cache:      cache,
		arbiterMu:  make(map[string]arbiterResult),
	}
}

// Batch is one (possibly overlapping) slice of a document's full text,
// fed to the underlying engine independently when the document exceeds
// BatchThresholdChars (spec §4.2).
type Batch struct {
	Text       string
	OffsetBase int
}

// SplitBatches splits fullText into batches at section boundaries
// (blank-line-delimited), with OverlapChars of trailing context carried
// into the next batch so a coreference chain spanning the split is not
// lost to either half. No batching occurs below the threshold.
func SplitBatches(fullText string, thresholdChars, overlapChars int) []Batch {
	if len(fullText) <= thresholdChars {
		return []Batch{{Text: fullText, OffsetBase: 0}}
	}

	sections := strings.Split(fullText, "\n\n")
	var batches []Batch
	var cur strings.Builder
	base := 0
	start := 0

	flush := func(nextStart int) {
		if cur.Len() == 0 {
			return
		}
		batches = append(batches, Batch{Text: cur.String(), OffsetBase: base})
		overlap := cur.String()
		if len(overlap) > overlapChars {
			overlap = overlap[len(overlap)-overlapChars:]
		}
		// The overlap ends just before the "\n\n" that precedes nextStart.
		base = nextStart - len("\n\n") - len(overlap)
		if base < 0 {
			base = 0
		}
		cur.Reset()
		cur.WriteString(overlap)
	}

	pos := 0
	for _, sec := range sections {
		if cur.Len() > 0 && cur.Len()+len(sec) > thresholdChars {
			flush(pos)
			start = pos
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(sec)
		pos += len(sec) + 2
	}
	_ = start
	if cur.Len() > 0 {
		batches = append(batches, Batch{Text: cur.String(), OffsetBase: base})
	}
	return batches
}

// DedupeClusters merges coreference chains that were produced by
// overlapping batches and therefore describe the same referent, keyed by
// chain signature (the lowercase sorted-mention-text signature spec §4.2
// names for batching/non-batching cluster-set equivalence, §8).
func DedupeClusters(chains []domain.CoreferenceChain) []domain.CoreferenceChain {
	bySig := make(map[string]*domain.CoreferenceChain)
	var order []string
	for _, c := range chains {
		existing, ok := bySig[c.Signature]
		if !ok {
			cc := c
			bySig[c.Signature] = &cc
			order = append(order, c.Signature)
			continue
		}
		existing.MentionIDs = mergeUnique(existing.MentionIDs, c.MentionIDs)
	}
	out := make([]domain.CoreferenceChain, 0, len(order))
	for _, sig := range order {
		out = append(out, *bySig[sig])
	}
	return out
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := append([]string{}, a...)
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// GatePronoun decides whether a pronoun mention resolves to an antecedent,
// given the underlying engine's raw confidence, sentence distance, and
// character distance, and whether the pronoun is referential at all (spec
// §4.2, §8 "threshold boundary admission": exactly at max distance is
// admitted, one tick beyond is ABSTAIN).
func (e *Engine) GatePronoun(engineConfidence float64, sentenceDistance, charDistance int, referential bool) domain.CorefLink {
	if !referential {
		return domain.CorefLink{
			Outcome: knowcore.CorefNonReferential,
			Reason:  knowcore.ReasonPronounNonRef,
		}
	}
	if engineConfidence < e.thresholds.PronounConfidenceFloor {
		return domain.CorefLink{
			Outcome:    knowcore.CorefAbstain,
			Reason:     knowcore.ReasonPronounLowConf,
			Confidence: engineConfidence,
		}
	}
	if sentenceDistance > e.thresholds.PronounSentenceDistance || charDistance > e.thresholds.PronounCharDistance {
		return domain.CorefLink{
			Outcome:    knowcore.CorefAbstain,
			Reason:     knowcore.ReasonPronounTooFar,
			Confidence: engineConfidence,
		}
	}
	return domain.CorefLink{
		Outcome:    knowcore.CorefResolved,
		Reason:     knowcore.ReasonPronounAccepted,
		Confidence: engineConfidence,
	}
}

// NamedSimilarity computes the Jaro-Winkler similarity and token Jaccard
// overlap between two named-entity surface forms, the two signals
// Named/Named gating combines (spec §4.2). Library: matchr for
// Jaro-Winkler; Jaccard is plain set arithmetic (no pack library implements
// bag-of-token Jaccard).
func NamedSimilarity(a, b string) (jaroWinkler, jaccard float64) {
	jaroWinkler = matchr.JaroWinkler(a, b, true)
	jaccard = tokenJaccard(a, b)
	return
}

func tokenJaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	inter, union := 0, 0
	seen := make(map[string]bool)
	for t := range ta {
		seen[t] = true
	}
	for t := range tb {
		seen[t] = true
	}
	for t := range seen {
		union++
		if ta[t] && tb[t] {
			inter++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		out[tok] = true
	}
	return out
}

// GateNamedNamed decides a Named/Named pair via the two-signal gate,
// consulting the decision cache first and the LLM arbiter only for pairs
// that land in the REVIEW zone (spec §4.2).
func (e *Engine) GateNamedNamed(ctx context.Context, tenantID, surfaceA, surfaceB string) (domain.CorefLink, error) {
	key := domain.MentionPairKey(tenantID, surfaceA, surfaceB)

	if e.cache != nil {
		if cached, err := e.cache.GetCorefDecision(ctx, key); err == nil {
			return domain.CorefLink{
				Outcome:    knowcore.CorefOutcome(cached.Outcome),
				Reason:     knowcore.CorefReasonCode(cached.ReasonCode),
				Confidence: cached.Confidence,
			}, nil
		} else if err != storage.ErrNotFound {
			return domain.CorefLink{}, kerrors.Wrap("coref.GateNamedNamed", kerrors.TransientExternal, err)
		}
	}

	jw, jaccard := NamedSimilarity(surfaceA, surfaceB)

	var link domain.CorefLink
	switch {
	case jw < e.thresholds.NamedRejectBelow:
		link = domain.CorefLink{Outcome: knowcore.CorefResolved, Reason: knowcore.ReasonNamedNamedRejected, Confidence: jw}
	case jw >= e.thresholds.NamedAcceptAbove || jaccard >= e.thresholds.NamedJaccardAccept:
		link = domain.CorefLink{Outcome: knowcore.CorefResolved, Reason: knowcore.ReasonNamedNamedAccepted, Confidence: jw}
	default:
		arb, err := e.arbitrate(ctx, surfaceA, surfaceB)
		if err != nil {
			return domain.CorefLink{}, err
		}
		if arb.abstain {
			link = domain.CorefLink{Outcome: knowcore.CorefAbstain, Reason: knowcore.ReasonArbiterAbstained, Confidence: arb.confidence}
		} else if arb.sameEntity {
			link = domain.CorefLink{Outcome: knowcore.CorefResolved, Reason: knowcore.ReasonNamedNamedAccepted, Confidence: arb.confidence}
		} else {
			link = domain.CorefLink{Outcome: knowcore.CorefResolved, Reason: knowcore.ReasonNamedNamedRejected, Confidence: arb.confidence}
		}
	}

	if e.cache != nil {
		_ = e.cache.PutCorefDecision(ctx, key, &storage.CorefDecisionEntry{
			Outcome:    string(link.Outcome),
			ReasonCode: string(link.Reason),
			Confidence: link.Confidence,
		})
	}

	return link, nil
}

// arbiterResponse is the structured payload the LLM arbiter returns for a
// REVIEW-zone pair.
type arbiterResponse struct {
	SameEntity bool    `json:"same_entity"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Abstain    bool    `json:"abstain"`
}

func (e *Engine) arbitrate(ctx context.Context, surfaceA, surfaceB string) (arbiterResult, error) {
	cacheKey := strings.ToLower(surfaceA) + "|" + strings.ToLower(surfaceB)
	if r, ok := e.arbiterMu[cacheKey]; ok {
		return r, nil
	}

	if e.client == nil {
		return arbiterResult{abstain: true}, nil
	}

	prompt := fmt.Sprintf(
		"Do %q and %q refer to the same real-world entity in this document? "+
			"Reply strictly as JSON: {\"same_entity\":bool,\"confidence\":0-1,\"reason\":string,\"abstain\":bool}. "+
			"If uncertain, set abstain true rather than guessing.",
		surfaceA, surfaceB)

	temp := 0.0
	resp, err := e.client.Complete(ctx, llm.Request{
		Capability:  string(model.CapabilityCorefArbitration),
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
		MaxTokens:   256,
	})
	if err != nil {
		return arbiterResult{}, kerrors.Wrap("coref.arbitrate", kerrors.TransientExternal, err)
	}

	raw := llm.ExtractJSON(resp.Content)
	var parsed arbiterResponse
	if raw == "" || json.Unmarshal([]byte(raw), &parsed) != nil {
		// A malformed arbiter response is conservative: abstain rather
		// than guess same_entity.
		return arbiterResult{abstain: true}, nil
	}

	result := arbiterResult{sameEntity: parsed.SameEntity, confidence: parsed.Confidence, abstain: parsed.Abstain}
	e.arbiterMu[cacheKey] = result
	return result, nil
}
