// Package storage persists the latest iteration snapshot per coordination
// group so the HTTP status API can serve it without touching the control
// loop.
package storage

import "time"

// Decision records one target's outcome in an iteration. DesiredReplicas
// equals CurrentReplicas when the decision engine left the target alone;
// Applied is true only when the actuation was attempted and succeeded.
type Decision struct {
	Target          string `json:"target"`
	CurrentReplicas int    `json:"currentReplicas"`
	DesiredReplicas int    `json:"desiredReplicas"`
	Applied         bool   `json:"applied"`
}

// Snapshot is the observable result of one control iteration.
type Snapshot struct {
	Group       string    `json:"group"`
	GeneratedAt time.Time `json:"generatedAt"`

	CPU            float64 `json:"cpu"`
	Memory         float64 `json:"memory"`
	LatencyMS      float64 `json:"latencyMs"`
	ThroughputMbps float64 `json:"throughputMbps"`
	Score          float64 `json:"score"`

	Trained        bool    `json:"trained"`
	Predicted      bool    `json:"predicted"`
	PredictedScore float64 `json:"predictedScore"`

	Decisions []Decision `json:"decisions,omitempty"`

	CooldownRemainingSeconds int `json:"cooldownRemainingSeconds"`
}

// Store holds the latest snapshot per group.
type Store interface {
	Put(Snapshot) error
	GetLatest(group string) (Snapshot, bool, error)
}
