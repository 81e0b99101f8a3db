// Package actuate applies replica decisions to the systems that own the
// workloads: Kubernetes deployments or a Terraform-managed node pool. The
// controller only ever talks to the Actuator interface; replica counts are
// always re-read from the external authority, never cached.
package actuate

import "context"

// Actuator reads and sets the replica count of a named target.
//
// SetReplicas must be idempotent: setting the value a target already has is
// a no-op success.
type Actuator interface {
	ReadReplicas(ctx context.Context, target string) (int, error)
	SetReplicas(ctx context.Context, target string, replicas int) error
}
