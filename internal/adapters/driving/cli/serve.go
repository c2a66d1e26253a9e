package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the retrieval API server",
	Long: `Starts the HTTP retrieval API and keeps the index up to date.

The data directory is scanned immediately, then on every scan interval and
whenever a supported file is created or written.

Endpoints:
  POST /v1/retrieve    {"query": "...", "k": 3, "userId": "..."}
  GET  /v1/statistics
  GET  /health

Send SIGHUP to probe the embedding provider again.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	logger.Info("--- %s ---", settings.Server.ServiceName)
	logger.Info("monitoring %s", settings.Server.DataDir)

	g, ctx := errgroup.WithContext(ctx)
	if err := a.runBackground(ctx, g); err != nil {
		return err
	}

	server := httpapi.NewServer(a.retrieval, settings.Server.Addr())
	g.Go(func() error { return server.Run(ctx) })

	return g.Wait()
}
