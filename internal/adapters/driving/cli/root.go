// Package cli provides the command-line interface for the retrieval service.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var version = "dev"

// Global flags.
var (
	verbose     bool
	configPath  string
	dataDirFlag string
	portFlag    int
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Retrieval backend for user-uploaded documents",
	Long: `sercha-rag watches a directory of uploaded documents, indexes new files
into an in-memory store and answers similarity queries over HTTP or MCP.

Files directly under the data directory are visible to every user. Files
under <userId>/ are only returned to that user.

Vector similarity is used when an embedding provider answers at startup,
keyword overlap otherwise.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&configPath, "config", "c", "", "path to TOML config file (default sercha-rag.toml)")
	flags.StringVar(&dataDirFlag, "data-dir", "", "directory to index (overrides DATA_DIR)")
	flags.IntVarP(&portFlag, "port", "p", 0, "listen port (overrides PORT)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
