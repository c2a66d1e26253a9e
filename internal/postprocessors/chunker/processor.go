// Package chunker provides a paragraph-aware text chunking processor.
package chunker

import (
	"context"
	"strings"
)

// DefaultChunkSize is the default maximum number of bytes per chunk.
const DefaultChunkSize = 1000

// paragraphSeparator marks a paragraph boundary and joins paragraphs within a chunk.
const paragraphSeparator = "\n\n"

// Split divides text into chunks of whole paragraphs.
//
// Paragraphs are accumulated greedily. When adding the next paragraph would
// push a non-empty chunk past maxChars, the chunk is flushed and a new one
// starts with that paragraph. A single paragraph longer than maxChars is
// never cut. The result is never empty for non-empty input.
//
// Flushed chunks have surrounding whitespace trimmed. If no flush happens the
// whole text is returned as one chunk byte for byte, trailing newline and
// all, so Split(t, n) == []string{t} whenever t fits in n.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}

	var (
		chunks  []string
		current string
		flushed bool
	)

	for _, para := range strings.Split(text, paragraphSeparator) {
		if current != "" && len(current)+len(para) > maxChars {
			if trimmed := strings.TrimSpace(current); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			current = para
			flushed = true
			continue
		}
		if current == "" {
			current = para
		} else {
			current += paragraphSeparator + para
		}
	}

	if !flushed {
		return []string{text}
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// Processor splits document text into paragraph chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process splits text into chunks.
// Input chunks are ignored; this processor creates new chunks from the text.
func (p *Processor) Process(_ context.Context, text string, _ []string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	return Split(text, p.chunkSize), nil
}
