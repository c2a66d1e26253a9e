package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// DefaultRetrieveK is the number of results returned when a request omits k.
const DefaultRetrieveK = 3

// TenantHeadroom is the multiplier applied to k when a tenant filter will discard candidates.
const TenantHeadroom = 3

// RetrieveRequest is a similarity query from an external caller.
type RetrieveRequest struct {
	// Query is the free-text query.
	Query string `json:"query"`

	// K is the maximum number of results. Nil means DefaultRetrieveK;
	// zero or less means no results.
	K *int `json:"k,omitempty"`

	// UserID restricts results to the tenant's documents plus global ones.
	UserID string `json:"userId,omitempty"`
}

// UnmarshalJSON accepts k as any JSON number, truncating fractions.
func (r *RetrieveRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Query  string       `json:"query"`
		K      *json.Number `json:"k"`
		UserID string       `json:"userId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	req := RetrieveRequest{Query: raw.Query, UserID: raw.UserID}
	if raw.K != nil {
		k, err := parseK(*raw.K)
		if err != nil {
			return err
		}
		req.K = &k
	}
	*r = req
	return nil
}

func parseK(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(max(min(i, math.MaxInt32), math.MinInt32)), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("k: %w", err)
	}
	return int(max(min(math.Trunc(f), math.MaxInt32), math.MinInt32)), nil
}

// Limit returns the result cap: DefaultRetrieveK when K is nil, otherwise
// K clamped at zero.
func (r RetrieveRequest) Limit() int {
	if r.K == nil {
		return DefaultRetrieveK
	}
	return max(*r.K, 0)
}

// CandidateLimit returns how many raw candidates to request before tenant filtering.
func (r RetrieveRequest) CandidateLimit() int {
	if r.UserID == "" {
		return r.Limit()
	}
	return r.Limit() * TenantHeadroom
}

// Statistics summarises the index for health and statistics endpoints.
type Statistics struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	DocumentsIndexed int    `json:"documents_indexed"`
	UniqueFiles      int    `json:"unique_files"`
	DataDir          string `json:"data_dir"`
}

// StatusUp is the status reported while the service is serving.
const StatusUp = "UP"

// ScanReport counts what a single scan pass did.
type ScanReport struct {
	// FilesSeen is every regular file encountered.
	FilesSeen int

	// FilesIndexed is files that produced new chunks.
	FilesIndexed int

	// FilesSkipped is unsupported, already indexed or blank files.
	FilesSkipped int

	// FilesFailed is files that could not be read or inserted.
	FilesFailed int

	// NewChunks is the number of chunks appended to the store.
	NewChunks int
}
