package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir        = "server.data_dir"
	keyHost           = "server.host"
	keyPort           = "server.port"
	keyServiceName    = "server.service_name"
	keyScanInterval   = "scanner.interval"
	keyMaxChunkChars  = "scanner.max_chunk_chars"
	keyWatch          = "scanner.watch"
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedTimeout   = "embedding.timeout"
	keyEmbedRateLimit = "embedding.requests_per_second"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvDataDir           = "DATA_DIR"
	EnvHost              = "HOST"
	EnvPort              = "PORT"
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvEmbeddingProvider = "EMBEDDING_PROVIDER"
	EnvEmbeddingModel    = "EMBEDDING_MODEL"
	EnvEmbeddingBaseURL  = "EMBEDDING_BASE_URL"
	EnvScanInterval      = "SCAN_INTERVAL"
)

// SettingsService resolves settings from defaults, the config file and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// getenv defaults to os.Getenv when nil.
func NewSettingsService(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Get returns the effective settings. Later layers override earlier ones:
// defaults, then the config file, then environment variables.
func (s *SettingsService) Get() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	if s.configStore != nil {
		s.applyConfig(&settings)
	}
	if err := s.applyEnv(&settings); err != nil {
		return domain.Settings{}, err
	}

	if !settings.Embedding.Provider.IsValid() {
		return domain.Settings{}, fmt.Errorf("%w: unknown embedding provider %q",
			domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.Server.Port <= 0 || settings.Server.Port > 65535 {
		return domain.Settings{}, fmt.Errorf("%w: port %d out of range", domain.ErrInvalidInput, settings.Server.Port)
	}

	return settings, nil
}

func (s *SettingsService) applyConfig(settings *domain.Settings) {
	setString(&settings.Server.DataDir, s.configStore.GetString(keyDataDir))
	setString(&settings.Server.Host, s.configStore.GetString(keyHost))
	setString(&settings.Server.ServiceName, s.configStore.GetString(keyServiceName))
	if port := s.configStore.GetInt(keyPort); port != 0 {
		settings.Server.Port = port
	}

	if d := s.configStore.GetDuration(keyScanInterval); d > 0 {
		settings.Scanner.Interval = d
	}
	if n := s.configStore.GetInt(keyMaxChunkChars); n > 0 {
		settings.Scanner.MaxChunkChars = n
	}
	if _, ok := s.configStore.Get(keyWatch); ok {
		settings.Scanner.Watch = s.configStore.GetBool(keyWatch)
	}

	if p := s.configStore.GetString(keyEmbedProvider); p != "" {
		settings.Embedding.Provider = domain.AIProvider(p)
	}
	setString(&settings.Embedding.Model, s.configStore.GetString(keyEmbedModel))
	setString(&settings.Embedding.BaseURL, s.configStore.GetString(keyEmbedBaseURL))
	setString(&settings.Embedding.APIKey, s.configStore.GetString(keyEmbedAPIKey))
	if d := s.configStore.GetDuration(keyEmbedTimeout); d > 0 {
		settings.Embedding.Timeout = d
	}
	if _, ok := s.configStore.Get(keyEmbedRateLimit); ok {
		settings.Embedding.RequestsPerSecond = s.configStore.GetFloat(keyEmbedRateLimit)
	}
}

func (s *SettingsService) applyEnv(settings *domain.Settings) error {
	setString(&settings.Server.DataDir, s.getenv(EnvDataDir))
	setString(&settings.Server.Host, s.getenv(EnvHost))

	if v := s.getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port number", domain.ErrInvalidInput, EnvPort, v)
		}
		settings.Server.Port = port
	}

	if v := s.getenv(EnvScanInterval); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", domain.ErrInvalidInput, EnvScanInterval, v, err)
		}
		settings.Scanner.Interval = d
	}

	if v := s.getenv(EnvEmbeddingProvider); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
	}
	setString(&settings.Embedding.Model, s.getenv(EnvEmbeddingModel))
	setString(&settings.Embedding.BaseURL, s.getenv(EnvEmbeddingBaseURL))
	setString(&settings.Embedding.APIKey, s.getenv(EnvOpenAIAPIKey))

	return nil
}

// settingParsers converts a command-line value into the type stored under
// each config key, rejecting values Get would refuse later.
var settingParsers = map[string]func(string) (any, error){
	keyDataDir:        parseNonEmpty,
	keyHost:           parseNonEmpty,
	keyPort:           parsePort,
	keyServiceName:    parseNonEmpty,
	keyScanInterval:   parseIntervalSetting,
	keyMaxChunkChars:  parsePositiveInt,
	keyWatch:          parseBoolSetting,
	keyEmbedProvider:  parseProvider,
	keyEmbedModel:     parseNonEmpty,
	keyEmbedBaseURL:   parseString,
	keyEmbedAPIKey:    parseString,
	keyEmbedTimeout:   parseIntervalSetting,
	keyEmbedRateLimit: parseRate,
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingParsers))
	for k := range settingParsers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set validates value for key and persists it to the config file.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return fmt.Errorf("%w: no config file to write", domain.ErrInvalidInput)
	}
	parse, ok := settingParsers[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	parsed, err := parse(value)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %w", domain.ErrInvalidInput, key, value, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save %s: %w", s.configStore.Path(), err)
	}
	return nil
}

func parseString(v string) (any, error) {
	return v, nil
}

func parseNonEmpty(v string) (any, error) {
	if v == "" {
		return nil, fmt.Errorf("value must not be empty")
	}
	return v, nil
}

func parsePositiveInt(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("must be positive")
	}
	return n, nil
}

func parsePort(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > 65535 {
		return nil, fmt.Errorf("port out of range")
	}
	return n, nil
}

func parseBoolSetting(v string) (any, error) {
	return strconv.ParseBool(v)
}

func parseRate(v string) (any, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	if f < 0 {
		return nil, fmt.Errorf("must not be negative")
	}
	return f, nil
}

// parseIntervalSetting stores durations in their Go string form.
func parseIntervalSetting(v string) (any, error) {
	d, err := parseInterval(v)
	if err != nil {
		return nil, err
	}
	return d.String(), nil
}

func parseProvider(v string) (any, error) {
	if !domain.AIProvider(v).IsValid() {
		return nil, fmt.Errorf("unknown embedding provider")
	}
	return v, nil
}

// parseInterval accepts a Go duration ("5s") or whole seconds ("5").
func parseInterval(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("interval must be positive")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	return d, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
