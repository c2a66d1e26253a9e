package services

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// cosineEpsilon keeps the denominator positive for all-zero vectors.
const cosineEpsilon = 1e-8

// cosineSimilarity returns dot(a,b) / (|a||b| + epsilon).
// Vectors of different length, or empty ones, score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}

// wordSet returns the distinct lower-cased whitespace-separated words of text.
func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// overlap counts the words two sets share.
func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// rankByVector scores every chunk against the query vector.
func rankByVector(chunks []domain.Chunk, query []float32) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = domain.ScoredChunk{Chunk: c, Score: cosineSimilarity(query, c.Embedding)}
	}
	sortByScore(scored)
	return scored
}

// rankByKeyword scores chunks by word overlap with the query.
// Chunks sharing no words with the query are left out.
func rankByKeyword(chunks []domain.Chunk, query string) []domain.ScoredChunk {
	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return nil
	}

	var scored []domain.ScoredChunk
	for _, c := range chunks {
		if n := overlap(queryWords, wordSet(c.Text)); n > 0 {
			scored = append(scored, domain.ScoredChunk{Chunk: c, Score: float64(n)})
		}
	}
	sortByScore(scored)
	return scored
}

// sortByScore orders by descending score. Ties keep insertion order.
func sortByScore(scored []domain.ScoredChunk) {
	slices.SortStableFunc(scored, func(a, b domain.ScoredChunk) int {
		return cmp.Compare(b.Score, a.Score)
	})
}
