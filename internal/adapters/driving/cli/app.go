package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// envFile is loaded from the working directory when present.
const envFile = ".env"

// app holds the wired services for one process.
type app struct {
	settings  domain.Settings
	supports  func(name string) bool
	embedder  driven.EmbeddingService
	resolver  *services.EmbeddingResolver
	retrieval *services.RetrievalService
	scheduler *services.Scheduler
}

// loadSettings resolves settings from .env, the config file, the environment
// and finally command-line flags.
func loadSettings(cmd *cobra.Command) (domain.Settings, error) {
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to load %s: %v", envFile, err)
		}
	}

	configStore, err := file.NewConfigStore(configPath)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("config: %w", err)
	}
	settings, err := services.NewSettingsService(configStore, os.Getenv).Get()
	if err != nil {
		return domain.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		settings.Server.DataDir = dataDirFlag
	}
	if flags.Changed("port") {
		if portFlag <= 0 || portFlag > 65535 {
			return domain.Settings{}, fmt.Errorf("%w: port %d out of range", domain.ErrInvalidInput, portFlag)
		}
		settings.Server.Port = portFlag
	}

	return settings, nil
}

// newApp wires the store, pipeline, embedding and retrieval services.
func newApp(settings domain.Settings) (*app, error) {
	pipeline, err := postprocessors.NewDefaultPipeline(settings.Scanner.MaxChunkChars)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		// Not fatal: retrieval falls back to keyword ranking
		logger.Warn("embedding provider: %v", err)
		embedder = nil
	}

	registry := normalisers.NewDefaultRegistry()
	store := memory.NewChunkStore()
	resolver := services.NewEmbeddingResolver(embedder, services.DefaultProbeTimeout)
	docs := services.NewDocumentService(store, pipeline, resolver)
	scanner := services.NewScanner(filesystem.New(), registry, store, docs)
	retrieval := services.NewRetrievalService(docs, scanner, settings.Server.DataDir, settings.Server.ServiceName)
	scheduler := services.NewScheduler(
		domain.DefaultSchedulerConfig(settings.Scanner.Interval),
		memory.NewSchedulerStore(),
		retrieval,
	)

	return &app{
		settings:  settings,
		supports:  registry.Supports,
		embedder:  embedder,
		resolver:  resolver,
		retrieval: retrieval,
		scheduler: scheduler,
	}, nil
}

// Close releases the embedding client.
func (a *app) Close() {
	if a.embedder == nil {
		return
	}
	if err := a.embedder.Close(); err != nil {
		logger.Warn("closing embedding service: %v", err)
	}
}

// runBackground starts scheduled scanning, the directory watcher and the
// SIGHUP handler on g. All stop when ctx is cancelled.
func (a *app) runBackground(ctx context.Context, g *errgroup.Group) error {
	if a.settings.Scanner.Watch {
		watcher, err := filesystem.NewWatcher(a.settings.Server.DataDir, a.scheduler, a.supports)
		if err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		g.Go(func() error { return watcher.Run(ctx) })
	}

	g.Go(func() error {
		err := a.scheduler.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		a.reresolveOnHangup(ctx)
		return nil
	})

	return nil
}

// reresolveOnHangup probes the embedding provider again on every SIGHUP.
func (a *app) reresolveOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info("SIGHUP received, re-resolving embedding provider")
			mode := a.resolver.Reresolve(ctx)
			logger.Info("retrieval mode: %s", mode)
		}
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
