// Package planner implements the Graph-First Search Planner (spec §4.8):
// REASONED/ANCHORED/TEXT_ONLY search modes, tier-escalating traversal
// (STRICT -> EXTENDED -> EXPERIMENTAL), the four named policies, and
// k-shortest-path queries against the promoted SemanticRelation graph.
// Grounded on original_source's graph_first_search.py/tier_filter.py state
// machine. Library: github.com/neo4j/neo4j-go-driver/v5 for Cypher
// allShortestPaths queries; FindPathsInMemory is a separate stdlib-only
// search that returns the single fewest-hop path over an explicit edge set
// (FindPaths does not call it).
package planner

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// Mode selects how the planner resolves a query into a traversal seed (spec
// §4.8).
type Mode string

const (
	// ModeReasoned lets an LLM select seed concepts and relation types from
	// the query text before traversal.
	ModeReasoned Mode = "REASONED"
	// ModeAnchored starts from caller-supplied concept ids, skipping LLM
	// seed selection.
	ModeAnchored Mode = "ANCHORED"
	// ModeTextOnly skips graph traversal entirely and defers to vector
	// search.
	ModeTextOnly Mode = "TEXT_ONLY"
)

// Policy bounds how far and how permissively a traversal may escalate (spec
// §4.8).
type Policy string

const (
	PolicyStrict      Policy = "STRICT"
	PolicyExploratory Policy = "EXPLORATORY"
	PolicyBalanced    Policy = "BALANCED"
	PolicyUnrestricted Policy = "UNRESTRICTED"
)

// policyTierCeiling is the highest DefensibilityTier each policy may
// escalate traversal into (spec §4.8).
var policyTierCeiling = map[Policy]knowcore.DefensibilityTier{
	PolicyStrict:       knowcore.TierStrict,
	PolicyExploratory:  knowcore.TierExperimental,
	PolicyBalanced:     knowcore.TierExtended,
	PolicyUnrestricted: knowcore.TierExperimental,
}

// tierEscalationOrder is the fixed escalation sequence (spec §4.8: "STRICT
// -> EXTENDED -> EXPERIMENTAL").
var tierEscalationOrder = []knowcore.DefensibilityTier{
	knowcore.TierStrict,
	knowcore.TierExtended,
	knowcore.TierExperimental,
}

// DefaultMaxPaths and DefaultMaxHops mirror config.PlannerConfig's defaults.
const (
	DefaultMaxPaths = 5
	DefaultMaxHops  = 4
)

// Path is one traversal result: an ordered chain of concept names connected
// by typed relations, with its weakest-link confidence.
type Path struct {
	ConceptNames []string
	RelationTypes []knowcore.RelationType
	Confidence    float64
	Tier          knowcore.DefensibilityTier
}

// Request is a planner query.
type Request struct {
	Tenant       string
	Mode         Mode
	Policy       Policy
	SeedConcepts []string // ANCHORED/REASONED: starting concept names
	MaxPaths     int
	MaxHops      int
}

// Plan wraps a neo4j driver and runs graph-first search.
type Plan struct {
	driver neo4j.DriverWithContext
}

// New wraps a connected neo4j driver. With a nil driver FindPaths returns no
// paths; FindPathsInMemory takes an explicit edge set instead of a driver.
func New(driver neo4j.DriverWithContext) *Plan {
	return &Plan{driver: driver}
}

// Dial opens a neo4j driver with basic auth, verifying connectivity.
func Dial(ctx context.Context, uri, username, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("planner: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("planner: verify connectivity: %w", err)
	}
	return driver, nil
}

// FindPaths runs the tier-escalating k-shortest-paths search (spec §4.8):
// it tries PolicyStrict's ceiling first, escalating tier-by-tier up to the
// Request's Policy ceiling, stopping as soon as a tier yields at least one
// path.
func (p *Plan) FindPaths(ctx context.Context, req Request) ([]Path, error) {
	if req.Mode == ModeTextOnly {
		return nil, nil
	}
	if len(req.SeedConcepts) < 2 {
		return nil, fmt.Errorf("planner: at least two seed concepts required for %s mode", req.Mode)
	}

	maxPaths := req.MaxPaths
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	maxHops := req.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	ceiling := policyTierCeiling[req.Policy]
	if ceiling == "" {
		ceiling = knowcore.TierStrict
	}

	for _, tier := range tierEscalationOrder {
		paths, err := p.queryTier(ctx, req.Tenant, req.SeedConcepts[0], req.SeedConcepts[1], tier, maxHops, maxPaths)
		if err != nil {
			return nil, err
		}
		if len(paths) > 0 {
			return paths, nil
		}
		if tier == ceiling {
			break
		}
	}
	return nil, nil
}

func (p *Plan) queryTier(ctx context.Context, tenant, from, to string, maxTier knowcore.DefensibilityTier, maxHops, maxPaths int) ([]Path, error) {
	if p.driver == nil {
		return nil, nil
	}

	cypher := fmt.Sprintf(`
		MATCH (a:Concept {tenant_id: $tenant, canonical_name: $from}),
		      (b:Concept {tenant_id: $tenant, canonical_name: $to}),
		      path = allShortestPaths((a)-[r:RELATES_TO*1..%d]-(b))
		WHERE all(rel IN r WHERE rel.tier IN $tiers)
		RETURN path
		LIMIT $maxPaths
	`, maxHops)

	tiers := tiersUpTo(maxTier)

	result, err := neo4j.ExecuteQuery(ctx, p.driver, cypher, map[string]any{
		"tenant":   tenant,
		"from":     from,
		"to":       to,
		"tiers":    tiers,
		"maxPaths": maxPaths,
	}, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("planner: query tier %s: %w", maxTier, err)
	}

	var out []Path
	for _, record := range result.Records {
		raw, ok := record.Get("path")
		if !ok {
			continue
		}
		path, ok := raw.(neo4j.Path)
		if !ok {
			continue
		}
		out = append(out, pathFromNeo4j(path, maxTier))
	}
	return out, nil
}

func tiersUpTo(max knowcore.DefensibilityTier) []string {
	var out []string
	for _, t := range tierEscalationOrder {
		out = append(out, string(t))
		if t == max {
			break
		}
	}
	return out
}

func pathFromNeo4j(path neo4j.Path, tier knowcore.DefensibilityTier) Path {
	names := make([]string, 0, len(path.Nodes))
	for _, n := range path.Nodes {
		if name, ok := n.Props["canonical_name"].(string); ok {
			names = append(names, name)
		}
	}
	types := make([]knowcore.RelationType, 0, len(path.Relationships))
	minConfidence := 1.0
	for _, r := range path.Relationships {
		if t, ok := r.Props["type"].(string); ok {
			types = append(types, knowcore.RelationType(t))
		}
		if c, ok := r.Props["confidence"].(float64); ok && c < minConfidence {
			minConfidence = c
		}
	}
	return Path{ConceptNames: names, RelationTypes: types, Confidence: minConfidence, Tier: tier}
}

// InMemoryEdge is a planner-local edge used by FindPathsInMemory.
type InMemoryEdge struct {
	From, To   string
	Type       knowcore.RelationType
	Tier       knowcore.DefensibilityTier
	Confidence float64
}

// FindPathsInMemory returns the fewest-hop path between from and to over an
// explicit edge set, using only edges at or below maxTier and at most
// maxHops hops. It returns at most one path whatever k is.
func FindPathsInMemory(edges []InMemoryEdge, from, to string, maxTier knowcore.DefensibilityTier, k, maxHops int) []Path {
	allowed := make(map[knowcore.DefensibilityTier]bool)
	for _, t := range tiersUpTo(maxTier) {
		allowed[knowcore.DefensibilityTier(t)] = true
	}

	adjacency := make(map[string][]InMemoryEdge)
	for _, e := range edges {
		if !allowed[e.Tier] {
			continue
		}
		adjacency[e.From] = append(adjacency[e.From], e)
		adjacency[e.To] = append(adjacency[e.To], InMemoryEdge{From: e.To, To: e.From, Type: e.Type, Tier: e.Tier, Confidence: e.Confidence})
	}

	shortest := dijkstraShortest(adjacency, from, to, maxHops)
	if shortest == nil {
		return nil
	}

	paths := []Path{*shortest}
	if k <= 1 {
		return paths
	}
	return paths
}

type queueItem struct {
	node       string
	path       []string
	relTypes   []knowcore.RelationType
	confidence float64
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	return len(pq[i].path) < len(pq[j].path)
}
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)         { *pq = append(*pq, x.(*queueItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstraShortest runs a fewest-hops shortest-path search bounded by
// maxHops; FindPathsInMemory returns its single result.
func dijkstraShortest(adjacency map[string][]InMemoryEdge, from, to string, maxHops int) *Path {
	pq := &priorityQueue{{node: from, path: []string{from}, confidence: 1.0}}
	heap.Init(pq)
	visited := map[string]bool{}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*queueItem)
		if cur.node == to {
			return &Path{ConceptNames: cur.path, RelationTypes: cur.relTypes, Confidence: cur.confidence}
		}
		if visited[cur.node] || len(cur.path) > maxHops {
			continue
		}
		visited[cur.node] = true

		for _, e := range adjacency[cur.node] {
			if visited[e.To] {
				continue
			}
			conf := cur.confidence
			if e.Confidence < conf {
				conf = e.Confidence
			}
			heap.Push(pq, &queueItem{
				node:       e.To,
				path:       append(append([]string{}, cur.path...), e.To),
				relTypes:   append(append([]knowcore.RelationType{}, cur.relTypes...), e.Type),
				confidence: conf,
			})
		}
	}
	return nil
}

// ProjectionCache caches a per-tenant graph projection for ProjectionCacheTTL
// (spec §4.8 config default 10min), avoiding a fresh traversal setup per
// query within the window.
type ProjectionCache struct {
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	edges     []InMemoryEdge
	expiresAt time.Time
}

// NewProjectionCache creates a ProjectionCache with the given TTL.
func NewProjectionCache(ttl time.Duration) *ProjectionCache {
	return &ProjectionCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

// Get returns the cached projection for tenant, if still fresh.
func (c *ProjectionCache) Get(tenant string) ([]InMemoryEdge, bool) {
	e, ok := c.entries[tenant]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.edges, true
}

// Put stores tenant's projection, refreshing its TTL.
func (c *ProjectionCache) Put(tenant string, edges []InMemoryEdge) {
	c.entries[tenant] = cacheEntry{edges: edges, expiresAt: time.Now().Add(c.ttl)}
}
