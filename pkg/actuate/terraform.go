package actuate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
)

// CommandRunner executes an external command and returns its combined
// output. Injected so tests never shell out.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

var countPattern = regexp.MustCompile(`count\s*=\s*(\d+)`)

// TerraformActuator scales a worker-node pool declared in a Terraform
// manifest: it rewrites the pool's count in main.tf and applies the plan.
// The actuator manages a single pool, so the target name is used only for
// logging. Apply runs twice: once to create the instances and once more to
// attach them to the load balancer.
type TerraformActuator struct {
	dir    string
	logger *slog.Logger
	run    CommandRunner
}

// NewTerraformActuator creates an actuator over the Terraform working
// directory containing main.tf.
func NewTerraformActuator(dir string, logger *slog.Logger) *TerraformActuator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TerraformActuator{dir: dir, logger: logger, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (a *TerraformActuator) manifestPath() string {
	return filepath.Join(a.dir, "main.tf")
}

// ReadReplicas parses the current node count from the manifest.
func (a *TerraformActuator) ReadReplicas(ctx context.Context, target string) (int, error) {
	data, err := os.ReadFile(a.manifestPath())
	if err != nil {
		return 0, fmt.Errorf("read manifest: %w", err)
	}

	m := countPattern.FindSubmatch(data)
	if m == nil {
		return 0, fmt.Errorf("no count declaration in %s", a.manifestPath())
	}
	count, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return count, nil
}

// SetReplicas rewrites the node count and applies the plan. Setting the
// value the manifest already holds is a no-op success.
func (a *TerraformActuator) SetReplicas(ctx context.Context, target string, replicas int) error {
	current, err := a.ReadReplicas(ctx, target)
	if err != nil {
		return err
	}
	if current == replicas {
		a.logger.Debug("node pool already at desired count",
			"target", target,
			"count", replicas,
		)
		return nil
	}

	data, err := os.ReadFile(a.manifestPath())
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	updated := countPattern.ReplaceAll(data, []byte(fmt.Sprintf("count=%d", replicas)))
	if err := os.WriteFile(a.manifestPath(), updated, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	chdir := "-chdir=" + a.dir
	steps := [][]string{
		{chdir, "init"},
		{chdir, "apply", "-auto-approve"},
		{chdir, "apply", "-auto-approve"},
	}
	for _, args := range steps {
		out, err := a.run(ctx, "terraform", args...)
		if err != nil {
			return fmt.Errorf("terraform %s: %w: %s", args[1], err, out)
		}
	}

	a.logger.Info("scaled node pool",
		"target", target,
		"from", current,
		"to", replicas,
	)
	return nil
}
