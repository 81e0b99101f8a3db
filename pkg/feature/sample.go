// Package feature defines the observed state of a workload: the feature
// vector sampled each control cycle and the bounded history those samples
// accumulate into.
package feature

import (
	"math"
	"time"
)

// Composite score weights. They sum to 1.0; latency and throughput are
// capped at signalCap before weighting so a single noisy signal cannot
// dominate the blend.
const (
	weightCPU        = 0.3
	weightMemory     = 0.2
	weightLatency    = 0.3
	weightThroughput = 0.2

	signalCap = 100.0
)

// FeatureCount is the width of a flattened Sample as consumed by the
// forecast model: cpu, memory, latency, throughput, score.
const FeatureCount = 5

// Sample is one observation of the managed workload. CPU and Memory are
// percentages in [0, 100]; LatencyMS and ThroughputMbps are non-negative.
// Callers substitute 0.0 for signals they could not obtain before
// constructing a Sample.
type Sample struct {
	CPU            float64
	Memory         float64
	LatencyMS      float64
	ThroughputMbps float64
	Score          float64
	ObservedAt     time.Time
}

// NewSample builds a Sample with its composite score derived from the four
// raw signals.
func NewSample(cpu, memory, latencyMS, throughputMbps float64, observedAt time.Time) Sample {
	return Sample{
		CPU:            cpu,
		Memory:         memory,
		LatencyMS:      latencyMS,
		ThroughputMbps: throughputMbps,
		Score:          Score(cpu, memory, latencyMS, throughputMbps),
		ObservedAt:     observedAt,
	}
}

// Score computes the composite load score. It is deterministic given the
// four raw signals.
func Score(cpu, memory, latencyMS, throughputMbps float64) float64 {
	return weightCPU*cpu +
		weightMemory*memory +
		weightLatency*math.Min(signalCap, latencyMS) +
		weightThroughput*math.Min(signalCap, throughputMbps)
}

// Features returns the sample flattened into the fixed-width vector the
// forecast model trains on.
func (s Sample) Features() []float64 {
	return []float64{s.CPU, s.Memory, s.LatencyMS, s.ThroughputMbps, s.Score}
}
