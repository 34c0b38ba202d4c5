package cli

import (
	"context"
	"fmt"
	"time"

	"hirescore/internal/config"
	"hirescore/internal/errors"
	"hirescore/internal/observability"
	"hirescore/internal/quiz"
	"hirescore/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start an HTTP server exposing the screening pipeline.

Available endpoints:
- POST /match: Score a candidate profile against a job
- POST /applications: Screen a resume and store the application
- GET /applications/{id}: Recruiter view of an application
- GET /quiz?jobTitle=: Public skill test questions for a job title
- POST /applications/{id}/quiz: Submit the skill test of an application
- POST /verify: Verify claimed skills against answers
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info
- GET /metrics: Prometheus metrics (when enabled without a dedicated port)`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Host to bind to (default from config)")
	cmd.Flags().String("store", "", "Store driver: memory or postgres (overrides config)")
	return cmd
}

// applyServeFlags copies explicitly set flags over the loaded configuration
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	overrides := map[string]*string{
		"port":  &cfg.Server.Port,
		"host":  &cfg.Server.Host,
		"store": &cfg.Store.Driver,
	}
	for name, target := range overrides {
		if cmd.Flags().Changed(name) {
			value, _ := cmd.Flags().GetString(name)
			*target = value
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := commandEnv(cmd)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer shutdownObservability(om, logger)

	p, err := newPipeline(cmd.Context(), cfg, logger, pipelineOptions{withStore: true, metrics: om.Metrics()})
	if err != nil {
		return err
	}
	defer p.Close()

	if cfg.Quiz.Watch && cfg.Quiz.BankFile != "" {
		watcher, err := quiz.NewWatcher(p.catalog, cfg.Quiz.DebounceDelay, logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to watch question bank: %w", err)
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.LogError(err, "Failed to stop question bank watcher")
			}
		}()
	}

	if metricsServer := observability.StartPrometheusServer(om.PrometheusHandler(), om.PrometheusConfig(), logger); metricsServer != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(ctx)
		}()
	}

	srv := server.NewServer(cfg, server.NewServerConfig(cfg, Version), server.Dependencies{
		App:     p.app,
		AI:      p.ai,
		Store:   p.store,
		Catalog: p.catalog,
	}, logger)
	return srv.Start(om)
}

// shutdownObservability flushes exporters
func shutdownObservability(om *observability.ObservabilityManager, logger *errors.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		logger.LogError(err, "Failed to shutdown observability")
	}
}
