// Package retrieval implements the Retriever & Synthesizer (spec §4.9):
// filtered vector search over vectorstore, optional graph-guided "light
// mode" traversal via planner, reranking, a confidence breakdown capped at
// 0.90, and LLM-backed synthesis over the assembled evidence. Grounded on
// original_source's search.py/synthesis.py pipeline, reusing the teacher's
// llm.Client.Complete capability-gated idiom for the final synthesis call.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/c360studio/knowcore/kerrors"
	"github.com/c360studio/knowcore/llm"
	"github.com/c360studio/knowcore/model"
	"github.com/c360studio/knowcore/planner"
	"github.com/c360studio/knowcore/storage"
	"github.com/c360studio/knowcore/vectorstore"
)

// ConfidenceCap bounds the synthesized answer's confidence score (spec
// §4.9 / config.PlannerConfig.ConfidenceCap: 0.90).
const ConfidenceCap = 0.90

const (
	baseConfidenceWeight  = 0.50
	kgBonusWeight         = 0.25
	chainBonusPerHop      = 0.05
	maxChainBonusHops     = 3
)

// EmbedFunc embeds a query string into a vector, supplied by the caller so
// this package stays embedding-model-agnostic.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Retriever runs filtered vector search, optional graph-guided expansion,
// reranking, and synthesis.
type Retriever struct {
	Store   *vectorstore.Store
	Planner *planner.Plan
	LLM     *llm.Client
	Embed   EmbedFunc
	// Cache holds the navigation layer's per-context ContextSummaryEntry
	// cache. seedConcepts reads the query's ContextNodeID summary when the
	// top two passages do not both carry a concept id; neither the planner
	// mode nor ConceptFilter is checked.
	Cache *storage.Store
}

// New creates a Retriever. Store, Planner, and LLM may be nil to degrade
// gracefully (planner-less falls back to pure vector search; LLM-less
// returns the top passages without a synthesized answer).
func New(store *vectorstore.Store, plan *planner.Plan, client *llm.Client, embed EmbedFunc) *Retriever {
	return &Retriever{Store: store, Planner: plan, LLM: client, Embed: embed}
}

// Passage is one retrieved unit of evidence, already scored and (if a graph
// path backs it) chain-extended.
type Passage struct {
	Text       string
	Score      float32
	ConceptIDs []string
	ChainHops  int
}

// Result is a synthesized answer with its confidence breakdown.
type Result struct {
	Answer     string
	Passages   []Passage
	Confidence float64
	BaseScore  float64
	KGBonus    float64
	ChainBonus float64
}

// Query is a retrieval request.
type Query struct {
	Tenant        string
	Text          string
	TopK          int
	ConceptFilter string // optional: exact-match payload filter on concept_id
	LightMode     bool   // graph-guided: expand top passages via planner chains
	PlannerMode   planner.Mode
	PlannerPolicy planner.Policy
	// ContextNodeID optionally names the DocumentContext/SectionContext whose
	// cached top concepts seed the planner when the top two passages do not
	// both carry a concept id (see Retriever.Cache).
	ContextNodeID string
}

type synthesisResponse struct {
	Answer string `json:"answer"`
}

// Retrieve runs the full pipeline: embed, filtered vector search, optional
// graph-guided expansion, rerank, confidence scoring, synthesis.
func (r *Retriever) Retrieve(ctx context.Context, q Query) (*Result, error) {
	if r.Store == nil || r.Embed == nil {
		return &Result{}, nil
	}

	vector, err := r.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}

	topK := q.TopK
	if topK <= 0 {
		topK = 10
	}

	filter := map[string]string{}
	if q.ConceptFilter != "" {
		filter["concept_id"] = q.ConceptFilter
	}

	hits, err := r.Store.Search(ctx, vectorstore.SearchRequest{
		Vector: vector,
		TopK:   topK,
		Filter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval: vector search: %w", err)
	}

	passages := rerank(hits)

	chainHops := 0
	if q.LightMode && r.Planner != nil && len(passages) >= 2 {
		chainHops = r.expandViaGraph(ctx, q, passages)
	}

	base := baseScore(passages)
	kgBonus := 0.0
	if chainHops > 0 {
		kgBonus = kgBonusWeight
	}
	chainBonus := float64(min(chainHops, maxChainBonusHops)) * chainBonusPerHop

	confidence := base*baseConfidenceWeight + kgBonus + chainBonus
	if confidence > ConfidenceCap {
		confidence = ConfidenceCap
	}

	result := &Result{
		Passages:   passages,
		Confidence: confidence,
		BaseScore:  base,
		KGBonus:    kgBonus,
		ChainBonus: chainBonus,
	}

	if r.LLM != nil {
		answer, err := r.synthesize(ctx, q.Text, passages)
		if err != nil {
			return nil, err
		}
		result.Answer = answer
	}

	return result, nil
}

func (r *Retriever) expandViaGraph(ctx context.Context, q Query, passages []Passage) int {
	seeds := r.seedConcepts(ctx, q, passages)
	if len(seeds) < 2 {
		return 0
	}
	paths, err := r.Planner.FindPaths(ctx, planner.Request{
		Tenant:       q.Tenant,
		Mode:         q.PlannerMode,
		Policy:       q.PlannerPolicy,
		SeedConcepts: seeds,
	})
	if err != nil || len(paths) == 0 {
		return 0
	}
	passages[0].ChainHops = len(paths[0].RelationTypes)
	return passages[0].ChainHops
}

// seedConcepts picks the planner's starting pair: the top two passages'
// concept ids when present, falling back to the ContextNodeID's cached
// top-concepts summary (spec §4.7) when the retrieved passages carry none.
func (r *Retriever) seedConcepts(ctx context.Context, q Query, passages []Passage) []string {
	if len(passages) >= 2 && len(passages[0].ConceptIDs) > 0 && len(passages[1].ConceptIDs) > 0 {
		return []string{passages[0].ConceptIDs[0], passages[1].ConceptIDs[0]}
	}
	if r.Cache == nil || q.ContextNodeID == "" {
		return nil
	}
	summary, err := r.Cache.GetContextSummary(ctx, q.ContextNodeID)
	if err != nil || len(summary.TopConcepts) < 2 {
		return nil
	}
	return summary.TopConcepts[:2]
}

// rerank orders hits by score descending; a pack rerank-model integration
// would replace this sort with a cross-encoder call.
func rerank(hits []vectorstore.SearchHit) []Passage {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	out := make([]Passage, 0, len(hits))
	for _, h := range hits {
		p := Passage{Score: h.Score}
		if text, ok := h.Payload["text"].(string); ok {
			p.Text = text
		}
		if cid, ok := h.Payload["concept_id"].(string); ok && cid != "" {
			p.ConceptIDs = []string{cid}
		}
		out = append(out, p)
	}
	return out
}

func baseScore(passages []Passage) float64 {
	if len(passages) == 0 {
		return 0
	}
	return float64(passages[0].Score)
}

func (r *Retriever) synthesize(ctx context.Context, query string, passages []Passage) (string, error) {
	if len(passages) == 0 {
		return "", nil
	}

	var evidence string
	for i, p := range passages {
		if i >= 5 {
			break
		}
		evidence += fmt.Sprintf("[%d] %s\n", i+1, p.Text)
	}

	prompt := fmt.Sprintf(
		"Answer the question using only the numbered evidence passages below. "+
			"Cite passage numbers inline. If the evidence does not answer the question, say so.\n\n"+
			"Question: %s\n\nEvidence:\n%s\n\nReply strictly as JSON: {\"answer\":string}",
		query, evidence)

	temp := 0.2
	resp, err := r.LLM.Complete(ctx, llm.Request{
		Capability:  string(model.CapabilitySynthesis),
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", kerrors.Wrap("retrieval.synthesize", kerrors.TransientExternal, err)
	}

	raw := llm.ExtractJSON(resp.Content)
	var parsed synthesisResponse
	if raw == "" || json.Unmarshal([]byte(raw), &parsed) != nil {
		return resp.Content, nil
	}
	return parsed.Answer, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
