package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// pingTimeout bounds the provider reachability check.
const pingTimeout = 5 * time.Second

var settingsCheck bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show effective settings",
	Long: `Prints the settings the server would start with, after applying the
config file, environment variables and flags.`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a setting to the config file",
	Long: `Validates and stores one setting in the TOML config file (--config, or
sercha-rag.toml in the working directory). Environment variables and flags
still override stored values.

Keys:
  ` + strings.Join(services.SettingKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.Flags().BoolVar(&settingsCheck, "check", false, "ping the embedding provider")
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	printSettings(cmd, settings)

	if settingsCheck {
		cmd.Printf("  Reachable: %s\n", checkProvider(cmd.Context(), settings.Embedding))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := services.NewSettingsService(store, os.Getenv).Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Saved %s to %s\n", args[0], store.Path())
	return nil
}

// checkProvider reports whether the configured embedding provider answers a ping.
func checkProvider(ctx context.Context, settings domain.EmbeddingSettings) string {
	svc, err := ai.CreateEmbeddingService(&settings)
	if err != nil {
		return fmt.Sprintf("no (%v)", err)
	}
	if svc == nil {
		return "n/a"
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Sprintf("no (%v)", err)
	}
	return "yes"
}

func printSettings(cmd *cobra.Command, settings domain.Settings) {
	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Listen: %s\n", settings.Server.Addr())
	cmd.Printf("  Data directory: %s\n", settings.Server.DataDir)
	cmd.Printf("  Service name: %s\n", settings.Server.ServiceName)
	cmd.Println()

	cmd.Println("[Scanner]")
	cmd.Printf("  Interval: %s\n", settings.Scanner.Interval)
	cmd.Printf("  Max chunk size: %d bytes\n", settings.Scanner.MaxChunkChars)
	cmd.Printf("  Watch: %t\n", settings.Scanner.Watch)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured, keyword retrieval will be used"
	}
	cmd.Printf("  Status: %s\n", status)
}

// maskAPIKey masks an API key for display.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
