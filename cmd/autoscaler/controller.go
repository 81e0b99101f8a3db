// Package main implements the scalecast autoscaler service.
// The autoscaler collects load signals, trains a forecast model, decides
// per-target replica counts, applies them through an actuator, and serves
// iteration snapshots via HTTP API.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/nexslice/scalecast/cmd/autoscaler/metrics"
	"github.com/nexslice/scalecast/pkg/actuate"
	"github.com/nexslice/scalecast/pkg/cooldown"
	"github.com/nexslice/scalecast/pkg/decision"
	"github.com/nexslice/scalecast/pkg/feature"
	"github.com/nexslice/scalecast/pkg/forecast"
	"github.com/nexslice/scalecast/pkg/storage"
	"github.com/nexslice/scalecast/pkg/telemetry"
)

// Controller orchestrates the control loop:
// collect → train → predict → decide → gate → actuate → store.
type Controller struct {
	group      string
	targets    []decision.Target
	targetLoad float64

	collector *telemetry.Collector
	history   *feature.History
	model     *forecast.Model
	gate      *cooldown.Gate
	actuator  actuate.Actuator
	store     storage.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger

	now func() time.Time
}

// NewController creates a Controller. The metrics argument may be nil, in
// which case recording is skipped (used by tests).
func NewController(
	group string,
	targets []decision.Target,
	targetLoad float64,
	collector *telemetry.Collector,
	history *feature.History,
	model *forecast.Model,
	gate *cooldown.Gate,
	actuator actuate.Actuator,
	store storage.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		group:      group,
		targets:    targets,
		targetLoad: targetLoad,
		collector:  collector,
		history:    history,
		model:      model,
		gate:       gate,
		actuator:   actuator,
		store:      store,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes the control loop until the context is canceled. The sleep is
// measured from the end of each iteration, so a slow iteration delays the
// next one rather than overlapping it.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	c.logger.Info("starting control loop", "group", c.group, "interval", interval)

	for {
		if ctx.Err() != nil {
			c.logger.Info("control loop stopped")
			return ctx.Err()
		}

		c.Tick(ctx)

		select {
		case <-ctx.Done():
			c.logger.Info("control loop stopped")
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Tick performs one control cycle. A failure in any stage degrades the
// iteration rather than aborting the loop. Exported for testing purposes.
func (c *Controller) Tick(ctx context.Context) {
	start := c.now()

	sample, failed := c.collect(ctx)
	c.history.Append(sample)

	history := c.history.Snapshot()
	c.train(history)

	snapshot := storage.Snapshot{
		Group:          c.group,
		GeneratedAt:    sample.ObservedAt,
		CPU:            sample.CPU,
		Memory:         sample.Memory,
		LatencyMS:      sample.LatencyMS,
		ThroughputMbps: sample.ThroughputMbps,
		Score:          sample.Score,
		Trained:        c.model.Trained(),
	}

	predicted, ok := c.model.Predict(history)
	if ok {
		snapshot.Predicted = true
		snapshot.PredictedScore = predicted
		if c.metrics != nil {
			c.metrics.SetPredictedScore(predicted)
		}

		snapshot.Decisions = c.actuate(ctx, predicted)
	} else {
		c.logger.Debug("no prediction available",
			"samples", len(history),
			"trained", c.model.Trained(),
		)
	}

	snapshot.CooldownRemainingSeconds = int(c.gate.Remaining(c.now()).Seconds())

	if err := c.store.Put(snapshot); err != nil {
		c.logger.Error("failed to store snapshot", "group", c.group, "error", err)
	}

	duration := c.now().Sub(start)
	if c.metrics != nil {
		c.metrics.RecordIteration(duration.Seconds())
	}
	c.logger.Info("control tick complete",
		"group", c.group,
		"score", sample.Score,
		"failed_signals", len(failed),
		"predicted", ok,
		"duration_ms", duration.Milliseconds(),
	)
}

// collect queries the load signals and records failures.
func (c *Controller) collect(ctx context.Context) (feature.Sample, []string) {
	sample, failed := c.collector.Collect(ctx)

	if c.metrics != nil {
		for _, signal := range failed {
			c.metrics.RecordSignalError(signal)
		}
		c.metrics.SetCompositeScore(sample.Score)
	}

	return sample, failed
}

// train gives the model a chance to retrain on the accumulated history.
func (c *Controller) train(history []feature.Sample) {
	if !c.model.MaybeRetrain(history) {
		return
	}
	if c.metrics != nil {
		c.metrics.RecordTrainingRun()
	}
	c.logger.Info("model retrained", "samples", len(history))
}

// actuate computes and applies per-target decisions for the predicted
// score. Each target is decided against its own current replica count. One
// cooldown check covers the whole iteration: when the gate denies a pending
// change, nothing is applied.
func (c *Controller) actuate(ctx context.Context, predicted float64) []storage.Decision {
	decisions := make([]storage.Decision, 0, len(c.targets))
	pending := false

	for _, target := range c.targets {
		current, err := c.actuator.ReadReplicas(ctx, target.Name)
		if err != nil {
			c.logger.Error("failed to read replicas", "target", target.Name, "error", err)
			if c.metrics != nil {
				c.metrics.RecordActuationError(target.Name)
			}
			continue
		}
		if c.metrics != nil {
			c.metrics.SetTargetReplicas(target.Name, current)
		}

		desired, changed := decision.Decide(current, predicted, c.targetLoad, target.MinReplicas, target.MaxReplicas)
		if changed {
			pending = true
		} else {
			desired = current
		}

		decisions = append(decisions, storage.Decision{
			Target:          target.Name,
			CurrentReplicas: current,
			DesiredReplicas: desired,
		})
	}

	if !pending {
		return decisions
	}

	if !c.gate.TryConsume(c.now()) {
		c.logger.Info("scaling blocked by cooldown",
			"remaining", c.gate.Remaining(c.now()).Round(time.Second),
		)
		if c.metrics != nil {
			c.metrics.RecordCooldownDenial()
		}
		return decisions
	}

	applied := false
	for i, d := range decisions {
		if d.DesiredReplicas == d.CurrentReplicas {
			continue
		}

		if err := c.actuator.SetReplicas(ctx, d.Target, d.DesiredReplicas); err != nil {
			c.logger.Error("failed to scale target",
				"target", d.Target,
				"from", d.CurrentReplicas,
				"to", d.DesiredReplicas,
				"error", err,
			)
			if c.metrics != nil {
				c.metrics.RecordActuationError(d.Target)
			}
			continue
		}

		decisions[i].Applied = true
		applied = true

		direction := "up"
		if d.DesiredReplicas < d.CurrentReplicas {
			direction = "down"
		}
		if c.metrics != nil {
			c.metrics.RecordScaleEvent(d.Target, direction)
			c.metrics.SetTargetReplicas(d.Target, d.DesiredReplicas)
		}
		c.logger.Info("scaled target",
			"target", d.Target,
			"from", d.CurrentReplicas,
			"to", d.DesiredReplicas,
			"predicted_score", predicted,
		)
	}

	if applied {
		c.gate.RecordSuccess(c.now())
	}

	return decisions
}
