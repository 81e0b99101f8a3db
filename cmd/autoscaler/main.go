package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexslice/scalecast/cmd/autoscaler/config"
	"github.com/nexslice/scalecast/cmd/autoscaler/logger"
	"github.com/nexslice/scalecast/cmd/autoscaler/metrics"
	"github.com/nexslice/scalecast/cmd/autoscaler/router"
	"github.com/nexslice/scalecast/cmd/autoscaler/store"
	"github.com/nexslice/scalecast/pkg/actuate"
	"github.com/nexslice/scalecast/pkg/cooldown"
	"github.com/nexslice/scalecast/pkg/decision"
	"github.com/nexslice/scalecast/pkg/feature"
	"github.com/nexslice/scalecast/pkg/forecast"
	"github.com/nexslice/scalecast/pkg/httpx"
	"github.com/nexslice/scalecast/pkg/telemetry"
)

func main() {
	cfg := config.ParseFlags()

	logger := logger.New(cfg)
	slog.SetDefault(logger)

	logger.Info("starting scalecast autoscaler",
		"version", "v0.1.0",
		"group", cfg.Group,
		"targets", cfg.Targets,
		"namespace", cfg.Namespace,
	)

	m := metrics.New()

	querier := &telemetry.Client{ServerURL: cfg.PromURL}
	queries := telemetry.NewQueries(cfg.QueryCPU, cfg.QueryMemory, cfg.QueryLatency, cfg.QueryThroughput)
	collector := telemetry.NewCollector(querier, queries, logger)

	history := feature.NewHistory(cfg.HistoryCapacity)
	model := forecast.NewModel(forecast.Config{
		WindowSize:         cfg.WindowSize,
		Horizon:            cfg.Horizon,
		MinTrainingSamples: cfg.MinTraining,
		RetrainPeriod:      cfg.RetrainPeriod,
	}, logger)
	gate := cooldown.NewGate(cfg.Cooldown)

	actuator := newActuator(cfg, logger)

	snapshots := store.New(cfg, logger)
	defer func() {
		if closer, ok := snapshots.(interface{ Close() error }); ok {
			closer.Close()
		}
	}()

	var targets []decision.Target
	for _, name := range cfg.TargetNames() {
		targets = append(targets, decision.Target{
			Name:        name,
			MinReplicas: cfg.MinReplicas,
			MaxReplicas: cfg.MaxReplicas,
		})
	}

	controller := NewController(
		cfg.Group,
		targets,
		cfg.TargetLoad,
		collector,
		history,
		model,
		gate,
		actuator,
		snapshots,
		m,
		logger,
	)

	staleAfter := 2 * cfg.Interval // Snapshot is stale if older than 2x the interval
	mux := router.SetupRoutes(snapshots, staleAfter, logger)
	httpServer := httpx.NewServer(cfg.Listen, mux, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := controller.Run(ctx, cfg.Interval); err != nil && err != context.Canceled {
			logger.Error("control loop failed", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	}

	logger.Info("shutting down")
	cancel()

	if err := httpServer.Stop(10 * time.Second); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// newActuator builds the configured actuator backend. Exits on a
// misconfigured kubernetes client so the autoscaler never runs without a
// working actuation path.
func newActuator(cfg *config.Config, logger *slog.Logger) actuate.Actuator {
	switch cfg.Actuator {
	case "terraform":
		logger.Info("using terraform actuator", "dir", cfg.TerraformDir)
		return actuate.NewTerraformActuator(cfg.TerraformDir, logger)
	default:
		client, err := actuate.NewKubernetesClient(logger)
		if err != nil {
			logger.Error("failed to create kubernetes client", "error", err)
			os.Exit(1)
		}
		logger.Info("using kubernetes actuator", "namespace", cfg.Namespace)
		return actuate.NewDeploymentActuator(client, cfg.Namespace, logger)
	}
}
