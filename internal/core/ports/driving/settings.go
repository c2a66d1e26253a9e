package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService resolves the service configuration.
type SettingsService interface {
	// Get returns the effective settings: defaults, then config file, then environment.
	Get() (domain.Settings, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// Set validates a single dot-separated setting and writes it to the config file.
	Set(key, value string) error
}
