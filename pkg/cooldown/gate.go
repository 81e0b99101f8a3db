// Package cooldown enforces a minimum elapsed time between scaling
// actuations. One Gate is shared by every target in a coordination group,
// so scaling any member closes the window for all of them.
package cooldown

import "time"

// DefaultCooldown is the minimum time between successful actuations when no
// explicit cooldown is configured.
const DefaultCooldown = 45 * time.Second

// Gate tracks the time of the last successful scale. It is owned by a
// single control loop and is not safe for concurrent use.
type Gate struct {
	cooldown  time.Duration
	lastScale time.Time
}

// NewGate creates a Gate with the given cooldown. A non-positive cooldown
// falls back to DefaultCooldown.
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{cooldown: cooldown}
}

// TryConsume reports whether an actuation is permitted at now. It never
// mutates the gate; callers record an actual scale with RecordSuccess.
func (g *Gate) TryConsume(now time.Time) bool {
	return now.Sub(g.lastScale) >= g.cooldown
}

// Remaining returns how long until the gate opens again, or zero if it is
// already open.
func (g *Gate) Remaining(now time.Time) time.Duration {
	if rem := g.cooldown - now.Sub(g.lastScale); rem > 0 {
		return rem
	}
	return 0
}

// RecordSuccess resets the cooldown window. The orchestrator calls it only
// after at least one target's actuation succeeded and changed its count.
func (g *Gate) RecordSuccess(now time.Time) {
	g.lastScale = now
}
