// Package config implements the scalecast autoscaler config.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Default PromQL queries for the four load signals. They match a 5G core
// deployment where the SMF and UPF pods run in the nexslice namespace and a
// blackbox exporter probes the user plane.
const (
	DefaultQueryCPU        = `avg(rate(container_cpu_usage_seconds_total{pod=~".*smf.*|.*upf.*"}[5m])) * 100`
	DefaultQueryMemory     = `avg(container_memory_usage_bytes{pod=~".*smf.*|.*upf.*"} / container_spec_memory_limit_bytes) * 100`
	DefaultQueryLatency    = `probe_duration_seconds{job="blackbox"}`
	DefaultQueryThroughput = `sum(rate(container_network_transmit_bytes_total{namespace="nexslice"}[5m]))`
)

// Config holds all autoscaler configuration.
type Config struct {
	Listen string

	Group     string
	Targets   string
	Namespace string

	Actuator     string
	TerraformDir string

	PromURL         string
	QueryCPU        string
	QueryMemory     string
	QueryLatency    string
	QueryThroughput string

	TargetLoad  float64
	MinReplicas int
	MaxReplicas int
	Cooldown    time.Duration
	Interval    time.Duration

	WindowSize      int
	Horizon         int
	MinTraining     int
	RetrainPeriod   int
	HistoryCapacity int

	Storage       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	LogFormat string
	LogLevel  string
}

// ParseFlags parses command-line flags and environment variables into a
// Config. Environment variables are used as fallbacks when flags are not
// provided. Exits with status 1 on invalid configuration.
func ParseFlags() *Config {
	cfg := &Config{}

	// Server
	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8080"), "HTTP listen address")

	// Targets
	flag.StringVar(&cfg.Group, "group", getEnv("GROUP", "nexslice-core"), "Coordination group name")
	flag.StringVar(&cfg.Targets, "targets", getEnv("TARGETS", "oai-smf,oai-upf"), "Comma-separated scaling target names")
	flag.StringVar(&cfg.Namespace, "namespace", getEnv("NAMESPACE", "nexslice"), "Kubernetes namespace of the targets")

	// Actuation
	flag.StringVar(&cfg.Actuator, "actuator", getEnv("ACTUATOR", "kubernetes"), "Actuator backend: kubernetes or terraform")
	flag.StringVar(&cfg.TerraformDir, "terraform-dir", getEnv("TERRAFORM_DIR", ""), "Directory containing main.tf (terraform actuator)")

	// Prometheus
	flag.StringVar(&cfg.PromURL, "prom-url", getEnv("PROMETHEUS_URL", "http://prometheus-server.monitoring.svc.cluster.local:9090"), "Prometheus URL")
	flag.StringVar(&cfg.QueryCPU, "query-cpu", getEnv("QUERY_CPU", DefaultQueryCPU), "PromQL query for CPU percent")
	flag.StringVar(&cfg.QueryMemory, "query-memory", getEnv("QUERY_MEMORY", DefaultQueryMemory), "PromQL query for memory percent")
	flag.StringVar(&cfg.QueryLatency, "query-latency", getEnv("QUERY_LATENCY", DefaultQueryLatency), "PromQL query for probe latency in seconds")
	flag.StringVar(&cfg.QueryThroughput, "query-throughput", getEnv("QUERY_THROUGHPUT", DefaultQueryThroughput), "PromQL query for throughput in bytes per second")

	// Scaling policy
	flag.Float64Var(&cfg.TargetLoad, "target-load", getEnvFloat("TARGET_LOAD", 60.0), "Composite score each replica should carry")
	flag.IntVar(&cfg.MinReplicas, "min", getEnvInt("MIN_REPLICAS", 2), "Minimum replicas per target")
	flag.IntVar(&cfg.MaxReplicas, "max", getEnvInt("MAX_REPLICAS", 10), "Maximum replicas per target")
	flag.DurationVar(&cfg.Cooldown, "cooldown", getEnvDuration("COOLDOWN", 45*time.Second), "Minimum delay between scaling actions")
	flag.DurationVar(&cfg.Interval, "interval", getEnvDuration("INTERVAL", 30*time.Second), "Control loop interval")

	// Forecast model
	flag.IntVar(&cfg.WindowSize, "window-size", getEnvInt("WINDOW_SIZE", 5), "Samples per training window")
	flag.IntVar(&cfg.Horizon, "horizon", getEnvInt("HORIZON", 2), "Samples ahead to predict")
	flag.IntVar(&cfg.MinTraining, "min-training", getEnvInt("MIN_TRAINING", 20), "Samples required before first training")
	flag.IntVar(&cfg.RetrainPeriod, "retrain-period", getEnvInt("RETRAIN_PERIOD", 10), "Retrain every Nth observed sample")
	flag.IntVar(&cfg.HistoryCapacity, "history-capacity", getEnvInt("HISTORY_CAPACITY", 1000), "Maximum retained samples")

	// Storage
	flag.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", "memory"), "Snapshot storage backend: memory or redis")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number")
	flag.DurationVar(&cfg.RedisTTL, "redis-ttl", getEnvDuration("REDIS_TTL", 0), "Snapshot TTL in Redis (0 = no expiry)")

	// Logging
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return cfg
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if len(c.TargetNames()) == 0 {
		return fmt.Errorf("--targets must name at least one target")
	}
	if c.TargetLoad <= 0 {
		return fmt.Errorf("--target-load must be positive, got %v", c.TargetLoad)
	}
	if c.MinReplicas < 1 {
		return fmt.Errorf("--min must be at least 1, got %d", c.MinReplicas)
	}
	if c.MinReplicas > c.MaxReplicas {
		return fmt.Errorf("--min (%d) cannot exceed --max (%d)", c.MinReplicas, c.MaxReplicas)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("--window-size must be at least 1, got %d", c.WindowSize)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("--horizon must be at least 1, got %d", c.Horizon)
	}
	switch c.Actuator {
	case "kubernetes":
	case "terraform":
		if c.TerraformDir == "" {
			return fmt.Errorf("--terraform-dir is required with the terraform actuator")
		}
	default:
		return fmt.Errorf("unknown actuator %q (want kubernetes or terraform)", c.Actuator)
	}
	switch c.Storage {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown storage %q (want memory or redis)", c.Storage)
	}
	return nil
}

// TargetNames splits the comma-separated target list, dropping empty
// entries and surrounding whitespace.
func (c *Config) TargetNames() []string {
	var names []string
	for _, name := range strings.Split(c.Targets, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
