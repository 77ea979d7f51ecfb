package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TextParser reads plain-text and markdown files verbatim. It is the
// default parser RunIngest falls back to when no richer adapter claims a
// file extension.
type TextParser struct{}

// NewTextParser constructs a TextParser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Name implements Parser.
func (p *TextParser) Name() string { return "text" }

// CanParse implements Parser.
func (p *TextParser) CanParse(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown", ".mdx":
		return true
	default:
		return false
	}
}

// Parse implements Parser.
func (p *TextParser) Parse(ctx context.Context, path string) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &Document{
		ID:       path,
		Filename: filepath.Base(path),
		MimeType: "text/plain",
		Body:     string(data),
	}, nil
}
