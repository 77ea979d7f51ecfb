// Package config provides configuration loading and management for the
// ingestion and retrieval core.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	NATS     NATSConfig     `yaml:"nats"`
	Graph    GraphConfig    `yaml:"graph"`
	Vector   VectorConfig   `yaml:"vector"`
	SQL      SQLConfig      `yaml:"sql"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Planner  PlannerConfig  `yaml:"planner"`
}

// ModelConfig configures the LLM client used for concept/assertion
// extraction, coreference arbitration, and synthesis.
type ModelConfig struct {
	// Default is the default model identifier (e.g. "gpt-4o-mini").
	Default string `yaml:"default"`
	// Endpoint is the provider API endpoint.
	Endpoint string `yaml:"endpoint"`
	// Temperature controls randomness (0.0-1.0, default: 0.2)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for model responses
	Timeout time.Duration `yaml:"timeout"`
}

// CorpusConfig configures where source documents are read from.
type CorpusConfig struct {
	// Path is the corpus root path (a directory of source documents).
	Path string `yaml:"path"`
}

// NATSConfig configures the NATS connection used for pass-to-pass messaging.
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// Embedded indicates whether to use embedded NATS
	Embedded bool `yaml:"embedded"`
}

// GraphConfig configures the property-graph store (G).
type GraphConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// VectorConfig configures the dense vector index (V).
type VectorConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	CollectionName string `yaml:"collection_name"`
	VectorSize     int    `yaml:"vector_size"`
}

// SQLConfig configures the relational EntityType registry (R).
type SQLConfig struct {
	DSN string `yaml:"dsn"`
}

// IngestConfig configures thresholds the ingestion passes use (spec §4.5/§4.6).
type IngestConfig struct {
	// CorefPronounConfidenceFloor is the minimum LLM confidence to resolve a
	// pronoun mention (spec §3: 0.85).
	CorefPronounConfidenceFloor float64 `yaml:"coref_pronoun_confidence_floor"`
	// CorefPronounSentenceDistance caps how many sentences back a pronoun
	// may resolve across.
	CorefPronounSentenceDistance int `yaml:"coref_pronoun_sentence_distance"`
	// CorefPronounCharDistance caps how many characters back a pronoun may
	// resolve across.
	CorefPronounCharDistance int `yaml:"coref_pronoun_char_distance"`
	// CorefNamedRejectBelow rejects a Named/Named pair below this
	// Jaro-Winkler similarity.
	CorefNamedRejectBelow float64 `yaml:"coref_named_reject_below"`
	// CorefNamedAcceptAbove accepts a Named/Named pair above this
	// Jaro-Winkler similarity.
	CorefNamedAcceptAbove float64 `yaml:"coref_named_accept_above"`
	// CorefNamedJaccardAccept accepts a Named/Named pair at or above this
	// token Jaccard overlap, independent of Jaro-Winkler.
	CorefNamedJaccardAccept float64 `yaml:"coref_named_jaccard_accept"`
	// CorefBatchOverlapChars is the character overlap between adjacent
	// coreference batches for documents over the batching threshold.
	CorefBatchOverlapChars int `yaml:"coref_batch_overlap_chars"`
	// CorefBatchThresholdChars is the document length above which
	// coreference resolution is batched.
	CorefBatchThresholdChars int `yaml:"coref_batch_threshold_chars"`
	// PromotionAbsoluteFloor is the confidence floor below which any
	// promotion decision is REJECT regardless of grade (spec §4.6: 0.40).
	PromotionAbsoluteFloor float64 `yaml:"promotion_absolute_floor"`
}

// PlannerConfig configures the graph-first query-time planner (spec §4.8).
type PlannerConfig struct {
	// MaxPaths bounds how many k-shortest-paths Yen's algorithm returns per
	// seed pair before the planner escalates tier or falls back.
	MaxPaths int `yaml:"max_paths"`
	// MaxHops bounds path length during graph search.
	MaxHops int `yaml:"max_hops"`
	// ConfidenceCap is the maximum synthesis confidence the planner will
	// ever report (spec §4.9: 0.90).
	ConfidenceCap float64 `yaml:"confidence_cap"`
	// ProjectionCacheTTL bounds how long a per-tenant graph projection stays
	// cached before the planner rebuilds it.
	ProjectionCacheTTL time.Duration `yaml:"projection_cache_ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Default:     "gpt-4o-mini",
			Endpoint:    "http://localhost:11434/v1",
			Temperature: 0.2,
			Timeout:     5 * time.Minute,
		},
		Corpus: CorpusConfig{
			Path: "",
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
		},
		Graph: GraphConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Vector: VectorConfig{
			Host:           "localhost",
			Port:           6334,
			CollectionName: "knowcore_units",
			VectorSize:     1536,
		},
		SQL: SQLConfig{
			DSN: "postgres://localhost:5432/knowcore?sslmode=disable",
		},
		Ingest: IngestConfig{
			CorefPronounConfidenceFloor:  0.85,
			CorefPronounSentenceDistance: 2,
			CorefPronounCharDistance:     500,
			CorefNamedRejectBelow:        0.55,
			CorefNamedAcceptAbove:        0.95,
			CorefNamedJaccardAccept:      0.80,
			CorefBatchOverlapChars:       2000,
			CorefBatchThresholdChars:     50000,
			PromotionAbsoluteFloor:       0.40,
		},
		Planner: PlannerConfig{
			MaxPaths:           5,
			MaxHops:            4,
			ConfidenceCap:      0.90,
			ProjectionCacheTTL: 10 * time.Minute,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Model.Default == "" {
		return fmt.Errorf("model.default is required")
	}
	if c.Model.Endpoint == "" {
		return fmt.Errorf("model.endpoint is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Ingest.PromotionAbsoluteFloor < 0 || c.Ingest.PromotionAbsoluteFloor > 1 {
		return fmt.Errorf("ingest.promotion_absolute_floor must be between 0 and 1")
	}
	if c.Planner.ConfidenceCap < 0 || c.Planner.ConfidenceCap > 1 {
		return fmt.Errorf("planner.confidence_cap must be between 0 and 1")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
// Of the Ingest section only PromotionAbsoluteFloor is merged; the coref
// thresholds in other are ignored.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Model.Default != "" {
		c.Model.Default = other.Model.Default
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	if other.Corpus.Path != "" {
		c.Corpus.Path = other.Corpus.Path
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}

	if other.Graph.URI != "" {
		c.Graph.URI = other.Graph.URI
	}
	if other.Graph.Username != "" {
		c.Graph.Username = other.Graph.Username
	}
	if other.Graph.Password != "" {
		c.Graph.Password = other.Graph.Password
	}
	if other.Graph.Database != "" {
		c.Graph.Database = other.Graph.Database
	}

	if other.Vector.Host != "" {
		c.Vector.Host = other.Vector.Host
	}
	if other.Vector.Port != 0 {
		c.Vector.Port = other.Vector.Port
	}
	if other.Vector.CollectionName != "" {
		c.Vector.CollectionName = other.Vector.CollectionName
	}
	if other.Vector.VectorSize != 0 {
		c.Vector.VectorSize = other.Vector.VectorSize
	}

	if other.SQL.DSN != "" {
		c.SQL.DSN = other.SQL.DSN
	}

	if other.Ingest.PromotionAbsoluteFloor != 0 {
		c.Ingest.PromotionAbsoluteFloor = other.Ingest.PromotionAbsoluteFloor
	}
	if other.Planner.MaxPaths != 0 {
		c.Planner.MaxPaths = other.Planner.MaxPaths
	}
	if other.Planner.MaxHops != 0 {
		c.Planner.MaxHops = other.Planner.MaxHops
	}
	if other.Planner.ConfidenceCap != 0 {
		c.Planner.ConfidenceCap = other.Planner.ConfidenceCap
	}
	if other.Planner.ProjectionCacheTTL != 0 {
		c.Planner.ProjectionCacheTTL = other.Planner.ProjectionCacheTTL
	}
}
