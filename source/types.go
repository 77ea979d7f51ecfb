// Package source defines the document ingestion boundary (spec §6): the
// Parser/Embedder interfaces external adapters implement, and the plain
// Document/Chunk shapes that flow from a parsed source into the unit
// indexer and chunker.
package source

import "context"

// Document is a parsed source document before structural splitting.
// DocItem boundaries (§4.1) are derived from Body by the unit indexer, not
// by this package.
type Document struct {
	// ID is the document identifier (stable across re-ingestion).
	ID string `json:"id"`

	// Filename is the original filename or URL.
	Filename string `json:"filename"`

	// MimeType is the source MIME type, when known.
	MimeType string `json:"mime_type,omitempty"`

	// Body is the document's textual content.
	Body string `json:"body"`

	// Frontmatter carries parsed metadata (YAML front matter, document
	// properties) when the source format carries any.
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
}

// Chunk represents a section of a document for context assembly (retained
// from the teacher's chunker for the retrieval layer's source citations;
// distinct from a Unit, which is the ingestion-time addressable span).
type Chunk struct {
	ParentID   string `json:"parent_id"`
	Index      int    `json:"index"`
	Section    string `json:"section,omitempty"`
	Content    string `json:"content"`
	TokenCount int    `json:"token_count"`
}

// Parser converts raw bytes at path into a Document. Concrete adapters
// (markdown, PDF, slide deck) live outside this module; RunIngest selects
// one by file extension.
type Parser interface {
	// Name identifies the parser (e.g. "text", "markdown").
	Name() string
	// CanParse reports whether the parser handles the given filename.
	CanParse(filename string) bool
	// Parse reads path and returns a Document.
	Parse(ctx context.Context, path string) (*Document, error)
}

// Embedder produces dense vector embeddings for a batch of unit texts, for
// the vectorstore upsert path (§4.9).
type Embedder interface {
	// Embed returns one vector per input text, in the same order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions reports the embedding vector size.
	Dimensions() int
}
