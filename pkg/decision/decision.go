// Package decision converts a predicted load score into a bounded replica
// target using a deterministic policy (ratio to target load, dead-band,
// min/max clamps). It performs no I/O and holds no state.
package decision

import "math"

// Dead-band around the target ratio. The band is asymmetric: tighter on the
// upper side so the controller scales up sooner than it scales down.
const (
	deadBandLow  = 0.8
	deadBandHigh = 1.1
)

// Target identifies one scalable workload and its replica bounds.
type Target struct {
	Name        string
	MinReplicas int
	MaxReplicas int
}

// Decide maps the current replica count and a predicted load score to a new
// replica count. It returns ok=false when no change should be made: the
// predicted/target ratio falls inside the dead-band, or the clamped
// candidate equals the current count. targetLoad must be positive;
// otherwise no decision is produced.
//
// Decide is a pure function: identical arguments always yield identical
// results.
func Decide(currentReplicas int, predictedScore, targetLoad float64, minReplicas, maxReplicas int) (int, bool) {
	if targetLoad <= 0 {
		return 0, false
	}

	ratio := predictedScore / targetLoad
	if ratio >= deadBandLow && ratio <= deadBandHigh {
		return 0, false
	}

	var candidate int
	if ratio > deadBandHigh {
		candidate = int(math.Ceil(float64(currentReplicas) * ratio))
	} else {
		candidate = int(math.Floor(float64(currentReplicas) * ratio))
	}

	candidate = clamp(candidate, minReplicas, maxReplicas)
	if candidate == currentReplicas {
		return 0, false
	}
	return candidate, true
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
