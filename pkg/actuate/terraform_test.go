package actuate

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testManifest = `resource "openstack_compute_instance_v2" "worker" {
  count=3
  name  = "k3s-worker-${count.index}"
}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.tf"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// recordingRunner captures terraform invocations instead of executing them.
type recordingRunner struct {
	calls [][]string
	err   error
}

func (r *recordingRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil, r.err
}

func newTestTerraformActuator(t *testing.T, dir string) (*TerraformActuator, *recordingRunner) {
	t.Helper()
	a := NewTerraformActuator(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := &recordingRunner{}
	a.run = rec.run
	return a, rec
}

func TestTerraformActuator_ReadReplicas(t *testing.T) {
	dir := writeManifest(t, testManifest)
	a, _ := newTestTerraformActuator(t, dir)

	got, err := a.ReadReplicas(context.Background(), "workers")
	if err != nil {
		t.Fatalf("ReadReplicas() error = %v", err)
	}
	if got != 3 {
		t.Errorf("ReadReplicas() = %d, want 3", got)
	}
}

func TestTerraformActuator_ReadReplicas_NoCount(t *testing.T) {
	dir := writeManifest(t, `resource "x" "y" {}`)
	a, _ := newTestTerraformActuator(t, dir)

	if _, err := a.ReadReplicas(context.Background(), "workers"); err == nil {
		t.Error("ReadReplicas() error = nil without a count declaration, want error")
	}
}

func TestTerraformActuator_SetReplicas(t *testing.T) {
	dir := writeManifest(t, testManifest)
	a, rec := newTestTerraformActuator(t, dir)

	if err := a.SetReplicas(context.Background(), "workers", 5); err != nil {
		t.Fatalf("SetReplicas() error = %v", err)
	}

	// Manifest rewritten.
	got, err := a.ReadReplicas(context.Background(), "workers")
	if err != nil {
		t.Fatalf("ReadReplicas() error = %v", err)
	}
	if got != 5 {
		t.Errorf("count after SetReplicas = %d, want 5", got)
	}

	// init, then apply twice (instances, then load balancer attachment).
	if len(rec.calls) != 3 {
		t.Fatalf("terraform invocations = %d, want 3: %v", len(rec.calls), rec.calls)
	}
	if rec.calls[0][2] != "init" {
		t.Errorf("first invocation = %v, want init", rec.calls[0])
	}
	for _, call := range rec.calls[1:] {
		if call[2] != "apply" {
			t.Errorf("invocation = %v, want apply", call)
		}
	}
	for _, call := range rec.calls {
		if !strings.HasPrefix(call[1], "-chdir=") {
			t.Errorf("invocation %v missing -chdir", call)
		}
	}
}

func TestTerraformActuator_SetReplicas_Idempotent(t *testing.T) {
	dir := writeManifest(t, testManifest)
	a, rec := newTestTerraformActuator(t, dir)

	if err := a.SetReplicas(context.Background(), "workers", 3); err != nil {
		t.Fatalf("SetReplicas() error = %v, want no-op success", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("terraform invoked %d times for an unchanged count, want 0", len(rec.calls))
	}
}

func TestTerraformActuator_SetReplicas_CommandFailure(t *testing.T) {
	dir := writeManifest(t, testManifest)
	a, rec := newTestTerraformActuator(t, dir)
	rec.err = os.ErrPermission

	if err := a.SetReplicas(context.Background(), "workers", 6); err == nil {
		t.Error("SetReplicas() error = nil when terraform fails, want error")
	}
}
