package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/knowcore/config"
	"github.com/c360studio/knowcore/domain"
	"github.com/c360studio/knowcore/ingest/navigation"
	"github.com/c360studio/knowcore/ingest/pipeline"
	"github.com/c360studio/knowcore/llm"
	"github.com/c360studio/knowcore/model"
	"github.com/c360studio/knowcore/planner"
	"github.com/c360studio/knowcore/retrieval"
	"github.com/c360studio/knowcore/storage"
	"github.com/c360studio/knowcore/telemetry"
	"github.com/c360studio/knowcore/vocabulary/knowcore"
)

// IngestResult summarizes a single ingest invocation.
type IngestResult struct {
	DocumentCount  int
	UnitCount      int
	AssertionCount int
	RuleCount      int
	FactCount      int
	RelationCount  int
	PromotedCount  int
	LintViolations int
	Summary        string
}

// SearchResult summarizes a single search/retrieval invocation.
type SearchResult struct {
	Summary string
}

// LintResult summarizes a navigation/semantic graph lint run.
type LintResult struct {
	ViolationCount int
	Summary        string
}

// App is the main application that wires together config, NATS, storage,
// and the model registry for the CLI subcommands.
type App struct {
	cfg *config.Config

	embeddedServer *server.Server
	natsConn       *nats.Conn
	js             jetstream.JetStream
	natsClient     *natsclient.Client

	store    *storage.Store
	registry *model.Registry

	pipeline  *pipeline.Pipeline
	planner   *planner.Plan
	retriever *retrieval.Retriever

	telemetryShutdown func(context.Context) error
	calls             *telemetry.ExternalCallRecorder
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config) (*App, error) {
	return &App{
		cfg:      cfg,
		registry: model.NewDefaultRegistry(),
	}, nil
}

// Start initializes and starts all components: NATS/JetStream transport,
// the ephemeral KV caches, the model registry, and the ingest/pipeline,
// planner, and retrieval components every CLI subcommand drives.
func (a *App) Start(ctx context.Context) error {
	if err := a.startNATS(ctx); err != nil {
		return fmt.Errorf("start NATS: %w", err)
	}

	store, err := storage.NewStore(ctx, a.js)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	a.store = store

	if err := a.registry.Validate(); err != nil {
		return fmt.Errorf("model registry: %w", err)
	}

	p := pipeline.New("default", a.natsClient, "knowcore-cli")
	p.Cache = a.store
	a.pipeline = p

	// No graph store configured by default; FindPaths degrades to
	// TEXT_ONLY-equivalent empty results until Dial is wired to a live
	// neo4j endpoint (see the graph config section).
	a.planner = planner.New(nil)

	llmClient := llm.NewClient(a.registry)
	a.retriever = retrieval.New(nil, a.planner, llmClient, nil)
	a.retriever.Cache = a.store

	shutdown, err := telemetry.Init(ctx, telemetry.Config{ServiceName: "knowcore-cli"})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.telemetryShutdown = shutdown

	recorder, err := telemetry.NewExternalCallRecorder(telemetry.Meter("knowcore-cli"))
	if err != nil {
		return fmt.Errorf("init telemetry recorder: %w", err)
	}
	a.calls = recorder

	return nil
}

func (a *App) startNATS(ctx context.Context) error {
	var clientURL string

	if a.cfg.NATS.URL != "" && !a.cfg.NATS.Embedded {
		conn, err := nats.Connect(a.cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.natsConn = conn
		clientURL = a.cfg.NATS.URL
	} else {
		opts := &server.Options{
			Port:      -1,
			JetStream: true,
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := server.NewServer(opts)
		if err != nil {
			return fmt.Errorf("create embedded NATS server: %w", err)
		}

		go ns.Start()

		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return fmt.Errorf("embedded NATS server failed to start")
		}

		a.embeddedServer = ns

		conn, err := nats.Connect(ns.ClientURL())
		if err != nil {
			ns.Shutdown()
			return fmt.Errorf("connect to embedded NATS: %w", err)
		}
		a.natsConn = conn
		clientURL = ns.ClientURL()
	}

	js, err := jetstream.New(a.natsConn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.js = js

	client, err := natsclient.NewClient(clientURL, natsclient.WithName("knowcore-cli"))
	if err != nil {
		return fmt.Errorf("create NATS client: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect NATS client: %w", err)
	}
	a.natsClient = client

	return nil
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown(timeout time.Duration) {
	if a.telemetryShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		_ = a.telemetryShutdown(shutdownCtx)
		cancel()
	}

	if a.natsClient != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = a.natsClient.Close(closeCtx)
	}

	if a.natsConn != nil {
		a.natsConn.Drain()
		a.natsConn.Close()
	}

	if a.embeddedServer != nil {
		a.embeddedServer.Shutdown()
		a.embeddedServer.WaitForShutdown()
	}
}

// RunIngest walks path (a single document or a corpus directory), reads
// every file as one narrative DocItem, and runs it through ingest/pipeline:
// unit indexing, rule & fact extraction, navigation edge accumulation, and
// the graph lint pass. The pipeline built in Start has no concept or
// relation extractor, so concept/assertion extraction and relation
// promotion do not run from the CLI.
func (a *App) RunIngest(ctx context.Context, path string) (*IngestResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat corpus path: %w", err)
	}

	var paths []string
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk corpus path: %w", err)
		}
	} else {
		paths = []string{path}
	}

	result := &IngestResult{DocumentCount: len(paths)}

	for i, p := range paths {
		text, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		items := []domain.DocItem{{
			ID:   fmt.Sprintf("%s-item-0", filepath.Base(p)),
			Type: knowcore.DocItemNarrative,
			Text: string(text),
		}}

		docID := fmt.Sprintf("doc-%d", i)
		runResult, err := a.pipeline.Run(ctx, docID, items)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", p, err)
		}

		result.UnitCount += runResult.UnitCount
		result.AssertionCount += runResult.AssertionCount
		result.RuleCount += runResult.RuleCount
		result.FactCount += runResult.FactCount
		result.RelationCount += runResult.RelationCount
		result.PromotedCount += runResult.PromotedCount
		result.LintViolations += len(runResult.LintViolations)
	}

	result.Summary = fmt.Sprintf(
		"ingested %d document(s) under %s: %d unit(s), %d rule(s), %d fact(s), %d lint violation(s)",
		result.DocumentCount, path, result.UnitCount, result.RuleCount, result.FactCount, result.LintViolations)
	return result, nil
}

// RunSearch resolves the query-planning and synthesis models for tenant
// and runs question through the retrieval pipeline's text-only path (no
// vector store or graph driver configured from the CLI yet, so it
// degrades to an empty-evidence synthesis describing which models it
// would have used).
func (a *App) RunSearch(ctx context.Context, tenant, question string) (*SearchResult, error) {
	plannerModel := a.registry.Resolve(model.CapabilityQueryPlanning)
	synthesisModel := a.registry.Resolve(model.CapabilitySynthesis)

	var res *retrieval.Result
	err := a.calls.Record(ctx, "retrieval", "search", func(ctx context.Context) error {
		var retrieveErr error
		res, retrieveErr = a.retriever.Retrieve(ctx, retrieval.Query{
			Tenant:      tenant,
			Text:        question,
			PlannerMode: planner.ModeTextOnly,
		})
		return retrieveErr
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	return &SearchResult{
		Summary: fmt.Sprintf("tenant=%s planner_model=%s synthesis_model=%s question=%q passages=%d confidence=%.2f",
			tenant, plannerModel, synthesisModel, question, len(res.Passages), res.Confidence),
	}, nil
}

// RunLint runs the navigation/semantic graph lint's four NAV-00x rules
// against an empty edge set (no live graph driver is connected from the
// CLI yet) and reports the forbidden-predicate set it enforces.
func (a *App) RunLint(ctx context.Context) (*LintResult, error) {
	violations := navigation.Lint(nil, nil)
	return &LintResult{
		ViolationCount: len(violations),
		Summary: fmt.Sprintf("lint check against %d forbidden navigation predicate(s); no live graph store connected, 0 edges checked",
			len(knowcore.ForbiddenNavigationEdges)),
	}, nil
}

// PrintRegistry writes the resolved model registry to w.
func (a *App) PrintRegistry(w io.Writer) error {
	if err := a.registry.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(w, "Capabilities:")
	for _, cap := range a.registry.ListCapabilities() {
		fmt.Fprintf(w, "  %-20s -> %s\n", cap, a.registry.Resolve(cap))
	}
	fmt.Fprintln(w, "\nEndpoints:")
	for _, name := range a.registry.ListEndpoints() {
		ep := a.registry.GetEndpoint(name)
		fmt.Fprintf(w, "  %-15s provider=%s model=%s\n", name, ep.Provider, ep.Model)
	}
	return nil
}
