package actuate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// DeploymentActuator scales Kubernetes deployments in a single namespace.
type DeploymentActuator struct {
	client    kubernetes.Interface
	namespace string
	logger    *slog.Logger
}

// NewDeploymentActuator creates an actuator over the given clientset.
func NewDeploymentActuator(client kubernetes.Interface, namespace string, logger *slog.Logger) *DeploymentActuator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeploymentActuator{client: client, namespace: namespace, logger: logger}
}

// ReadReplicas returns the deployment's desired replica count. An unset
// spec.replicas means the Kubernetes default of 1.
func (a *DeploymentActuator) ReadReplicas(ctx context.Context, target string) (int, error) {
	dep, err := a.client.AppsV1().Deployments(a.namespace).Get(ctx, target, metav1.GetOptions{})
	if err != nil {
		return 0, fmt.Errorf("get deployment %s/%s: %w", a.namespace, target, err)
	}
	if dep.Spec.Replicas == nil {
		return 1, nil
	}
	return int(*dep.Spec.Replicas), nil
}

// SetReplicas updates the deployment's replica count. Setting the current
// value is a no-op success.
func (a *DeploymentActuator) SetReplicas(ctx context.Context, target string, replicas int) error {
	dep, err := a.client.AppsV1().Deployments(a.namespace).Get(ctx, target, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("get deployment %s/%s: %w", a.namespace, target, err)
	}

	desired := int32(replicas)
	if dep.Spec.Replicas != nil && *dep.Spec.Replicas == desired {
		a.logger.Debug("deployment already at desired replicas",
			"deployment", target,
			"replicas", replicas,
		)
		return nil
	}

	current := int32(1)
	if dep.Spec.Replicas != nil {
		current = *dep.Spec.Replicas
	}

	dep.Spec.Replicas = &desired
	if _, err := a.client.AppsV1().Deployments(a.namespace).Update(ctx, dep, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("update deployment %s/%s: %w", a.namespace, target, err)
	}

	a.logger.Info("scaled deployment",
		"deployment", target,
		"from", current,
		"to", desired,
	)
	return nil
}

// NewKubernetesClient builds a clientset from the in-cluster service
// account when available, falling back to the kubeconfig named by
// KUBECONFIG or at the default location.
func NewKubernetesClient(logger *slog.Logger) (*kubernetes.Clientset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := rest.InClusterConfig()
	if err == nil {
		logger.Info("using in-cluster kubernetes configuration")
		return kubernetes.NewForConfig(cfg)
	}

	kubeconfig := os.Getenv("KUBECONFIG")
	if kubeconfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("not in-cluster and no kubeconfig found: %w", err)
		}
		kubeconfig = filepath.Join(home, ".kube", "config")
	}

	logger.Info("using local kubeconfig", "path", kubeconfig)
	cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}
	return kubernetes.NewForConfig(cfg)
}
