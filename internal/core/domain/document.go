package domain

import (
	"crypto/md5" //nolint:gosec // Fingerprints identify file versions, not secrets.
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Chunk is a unit of indexed text.
// Once appended to a store its Source and Text never change.
type Chunk struct {
	// Text is the passage content. Never empty.
	Text string

	// Source is the logical provenance path relative to the data directory,
	// e.g. "alice/statement.csv" or "faq.md" for global documents.
	Source string

	// Embedding is the vector representation. Empty in keyword mode or when
	// embedding this chunk failed.
	Embedding []float32
}

// ScoredChunk pairs a stored chunk with its relevance for one query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievedChunk is the outward-facing shape of a query hit.
// Embeddings are never exposed.
type RetrievedChunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Tenant returns the tenant that owns the chunk's source, or "" for global documents.
func (c Chunk) Tenant() string {
	tenant, _, found := strings.Cut(c.Source, "/")
	if !found {
		return ""
	}
	return tenant
}

// VisibleTo reports whether a tenant may see the chunk.
// Global documents (no path separator) are visible to every tenant.
func (c Chunk) VisibleTo(tenantID string) bool {
	if tenantID == "" {
		return true
	}
	owner := c.Tenant()
	return owner == "" || owner == tenantID
}

// Fingerprint identifies one version of a file: its base name and modification time.
type Fingerprint string

// NewFingerprint derives the fingerprint of a file version.
// Two files with the same base name and mtime share a fingerprint, wherever they live.
func NewFingerprint(name string, modTime time.Time) Fingerprint {
	sum := md5.Sum(fmt.Appendf(nil, "%s_%d", name, modTime.UnixNano())) //nolint:gosec // see import
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// FileInfo describes a regular file found under the data directory.
type FileInfo struct {
	// Path is the absolute or root-joined path used to read the file.
	Path string

	// Source is the slash-separated path relative to the data directory.
	Source string

	// Name is the base name of the file.
	Name string

	// ModTime is the last modification time.
	ModTime time.Time

	// Size is the file size in bytes.
	Size int64
}

// Fingerprint returns the fingerprint of this file version.
func (f FileInfo) Fingerprint() Fingerprint {
	return NewFingerprint(f.Name, f.ModTime)
}
