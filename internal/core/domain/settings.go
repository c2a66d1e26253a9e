package domain

import (
	"net"
	"strconv"
	"time"
)

const unknownDescription = "Unknown"

// EmbeddingMode is the process-wide ranking strategy.
// It starts Unresolved and moves exactly once to Vector or Keyword.
type EmbeddingMode string

// Available embedding modes.
const (
	// EmbeddingModeUnresolved means no resolution attempt has completed yet.
	EmbeddingModeUnresolved EmbeddingMode = "unresolved"

	// EmbeddingModeVector ranks by cosine similarity of embeddings.
	EmbeddingModeVector EmbeddingMode = "vector"

	// EmbeddingModeKeyword ranks by word overlap; no embeddings are produced.
	EmbeddingModeKeyword EmbeddingMode = "keyword"
)

// IsValid returns true if the mode is recognised.
func (m EmbeddingMode) IsValid() bool {
	switch m {
	case EmbeddingModeUnresolved, EmbeddingModeVector, EmbeddingModeKeyword:
		return true
	default:
		return false
	}
}

// IsResolved returns true once the mode has reached a terminal state.
func (m EmbeddingMode) IsResolved() bool {
	return m == EmbeddingModeVector || m == EmbeddingModeKeyword
}

// String returns the string representation.
func (m EmbeddingMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m EmbeddingMode) Description() string {
	switch m {
	case EmbeddingModeUnresolved:
		return "Unresolved (provider not yet probed)"
	case EmbeddingModeVector:
		return "Vector (cosine similarity over embeddings)"
	case EmbeddingModeKeyword:
		return "Keyword (word overlap fallback)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables embeddings; the service runs in keyword mode.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"
)

// placeholderAPIKey is the value shipped in sample .env files.
//
//nolint:gosec // G101: Placeholder, not a credential.
const placeholderAPIKey = "YOUR_OPENAI_API_KEY_HERE"

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "None (keyword retrieval)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Timeout bounds every external embedding call.
	Timeout time.Duration

	// RequestsPerSecond throttles external embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
// An OpenAI provider with a missing or placeholder key is not configured.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderNone {
		return false
	}
	if e.Provider.RequiresAPIKey() && (e.APIKey == "" || e.APIKey == placeholderAPIKey) {
		return false
	}
	return true
}

// ServerSettings holds the HTTP listener and data directory configuration.
type ServerSettings struct {
	// Host is the listen address host.
	Host string

	// Port is the listen port.
	Port int

	// DataDir is the root directory watched for uploads.
	DataDir string

	// ServiceName is reported by the statistics endpoints.
	ServiceName string
}

// Addr returns the host:port listen address.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ScannerSettings holds ingestion configuration.
type ScannerSettings struct {
	// Interval is the period between background scans.
	Interval time.Duration

	// MaxChunkChars bounds chunk size.
	MaxChunkChars int

	// Watch enables filesystem notifications that trigger early scans.
	Watch bool
}

// Settings is the complete service configuration, read once at startup.
type Settings struct {
	Server    ServerSettings
	Scanner   ScannerSettings
	Embedding EmbeddingSettings
}

// Default configuration values.
const (
	DefaultHost              = "0.0.0.0"
	DefaultPort              = 8081
	DefaultDataDir           = "./data/user-uploads"
	DefaultServiceName       = "Pathway RAG Processor"
	DefaultScanInterval      = 5 * time.Second
	DefaultMaxChunkChars     = 1000
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultEmbeddingTimeout  = 30 * time.Second
	DefaultRequestsPerSecond = 10
)

// DefaultSettings returns sensible defaults for the service.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:        DefaultHost,
			Port:        DefaultPort,
			DataDir:     DefaultDataDir,
			ServiceName: DefaultServiceName,
		},
		Scanner: ScannerSettings{
			Interval:      DefaultScanInterval,
			MaxChunkChars: DefaultMaxChunkChars,
			Watch:         true,
		},
		Embedding: EmbeddingSettings{
			Provider:          AIProviderOpenAI,
			Model:             DefaultEmbeddingModel,
			Timeout:           DefaultEmbeddingTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
	}
}
