// Package plaintext provides the normaliser for text files indexed as-is.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
// Content is kept verbatim apart from dropping invalid UTF-8 sequences.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{
		".txt",
		".md",
		".csv",
		".json",
		".log",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes raw as UTF-8, silently dropping invalid byte sequences.
func (n *Normaliser) Normalise(ctx context.Context, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}
