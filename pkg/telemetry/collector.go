package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/nexslice/scalecast/pkg/feature"
)

// Unit conversions applied to raw query results: probe latency arrives in
// seconds and is recorded in milliseconds; network throughput arrives in
// bytes per second and is recorded in megabytes per second.
const (
	latencyScale    = 1000.0
	throughputScale = 1.0 / (1024 * 1024)
)

// Signal names used for logging and error accounting.
const (
	SignalCPU        = "cpu"
	SignalMemory     = "memory"
	SignalLatency    = "latency"
	SignalThroughput = "throughput"
)

// SignalQuery is one named query plus the factor mapping its raw result to
// the unit the feature vector expects.
type SignalQuery struct {
	Query string
	Scale float64
}

// Queries holds the four signal queries feeding a feature vector.
type Queries struct {
	CPU        SignalQuery
	Memory     SignalQuery
	Latency    SignalQuery
	Throughput SignalQuery
}

// NewQueries builds a Queries set from four PromQL expressions, applying
// the canonical unit conversions: cpu and memory must evaluate to
// percentages, latency to seconds, throughput to bytes per second.
func NewQueries(cpu, memory, latency, throughput string) Queries {
	return Queries{
		CPU:        SignalQuery{Query: cpu, Scale: 1},
		Memory:     SignalQuery{Query: memory, Scale: 1},
		Latency:    SignalQuery{Query: latency, Scale: latencyScale},
		Throughput: SignalQuery{Query: throughput, Scale: throughputScale},
	}
}

// Collector queries the four raw signals independently and assembles them
// into a Sample. A failed or empty signal degrades to 0.0 and never aborts
// the collection.
type Collector struct {
	querier Querier
	queries Queries
	logger  *slog.Logger
}

// NewCollector creates a Collector over the given querier and signal set.
func NewCollector(querier Querier, queries Queries, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{querier: querier, queries: queries, logger: logger}
}

// Collect gathers all four signals and returns the resulting sample along
// with the names of signals whose queries failed (each substituted with
// 0.0). Signals that merely returned no data also default to 0.0 but are
// not reported as failures.
func (c *Collector) Collect(ctx context.Context) (feature.Sample, []string) {
	var failed []string

	get := func(name string, sq SignalQuery) float64 {
		value, found, err := c.querier.Scalar(ctx, sq.Query)
		if err != nil {
			c.logger.Warn("signal query failed, defaulting to 0",
				"signal", name,
				"error", err,
			)
			failed = append(failed, name)
			return 0
		}
		if !found {
			c.logger.Debug("signal query returned no data", "signal", name)
			return 0
		}
		return value * sq.Scale
	}

	cpu := get(SignalCPU, c.queries.CPU)
	memory := get(SignalMemory, c.queries.Memory)
	latency := get(SignalLatency, c.queries.Latency)
	throughput := get(SignalThroughput, c.queries.Throughput)

	return feature.NewSample(cpu, memory, latency, throughput, time.Now()), failed
}
