package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nexslice/scalecast/pkg/storage"
	"github.com/nexslice/scalecast/pkg/telemetry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestCollectorAgainstMockPrometheus runs the telemetry collector against a
// mock Prometheus served by nginx.
func TestCollectorAgainstMockPrometheus(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Every query returns the same instant vector; the collector only looks
	// at the first sample value.
	promResponse := fmt.Sprintf(`{"status":"success","data":{"resultType":"vector","result":[{"metric":{},"value":[%d,"42.5"]}]}}`,
		time.Now().Unix())

	nginxConf := `
events {
    worker_connections 1024;
}
http {
    server {
        listen 80;
        location /api/v1/query {
            default_type application/json;
            return 200 '` + promResponse + `';
        }
    }
}
`

	promReq := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files: []testcontainers.ContainerFile{
			{
				HostFilePath:      "",
				ContainerFilePath: "/etc/nginx/nginx.conf",
				FileMode:          0644,
				Reader:            strings.NewReader(nginxConf),
			},
		},
		WaitingFor: wait.ForHTTP("/api/v1/query").WithPort("80/tcp").WithStartupTimeout(30 * time.Second),
	}

	promContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: promReq,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Prometheus mock container: %v", err)
	}
	defer promContainer.Terminate(ctx)

	host, err := promContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := promContainer.MappedPort(ctx, "80")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	promURL := fmt.Sprintf("http://%s:%s", host, port.Port())
	t.Logf("Mock Prometheus URL: %s", promURL)

	querier := &telemetry.Client{ServerURL: promURL}

	t.Run("Scalar", func(t *testing.T) {
		value, found, err := querier.Scalar(ctx, "up")
		if err != nil {
			t.Fatalf("Scalar() error = %v", err)
		}
		if !found {
			t.Fatal("Scalar() found = false, want true")
		}
		if value != 42.5 {
			t.Errorf("Scalar() = %v, want 42.5", value)
		}
	})

	t.Run("Collect", func(t *testing.T) {
		queries := telemetry.NewQueries("cpu_q", "mem_q", "lat_q", "tput_q")
		collector := telemetry.NewCollector(querier, queries, discardLogger())

		sample, failed := collector.Collect(ctx)
		if len(failed) != 0 {
			t.Fatalf("Collect() failed signals = %v, want none", failed)
		}
		if sample.CPU != 42.5 || sample.Memory != 42.5 {
			t.Errorf("cpu/memory = %v/%v, want 42.5", sample.CPU, sample.Memory)
		}
		// 42.5s probe latency scales to 42500ms and caps at 100 in the score;
		// 42.5 B/s is a vanishing number of megabytes.
		if sample.LatencyMS != 42500 {
			t.Errorf("LatencyMS = %v, want 42500", sample.LatencyMS)
		}
		if sample.Score <= 0 {
			t.Errorf("Score = %v, want positive", sample.Score)
		}
	})
}

// TestRedisStore exercises the Redis snapshot store against a real Redis.
func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	redisReq := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: redisReq,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis host: %v", err)
	}
	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get redis port: %v", err)
	}

	addr := fmt.Sprintf("%s:%s", host, port.Port())
	t.Logf("Redis running at: %s", addr)

	store, err := storage.NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	snap := storage.Snapshot{
		Group:          "nexslice-core",
		GeneratedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Score:          72.5,
		Trained:        true,
		Predicted:      true,
		PredictedScore: 81.0,
		Decisions: []storage.Decision{
			{Target: "oai-upf", CurrentReplicas: 2, DesiredReplicas: 3, Applied: true},
		},
	}

	if err := store.Put(snap); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, found, err := store.GetLatest("nexslice-core")
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if !found {
		t.Fatal("GetLatest() found = false, want true")
	}
	if got.PredictedScore != snap.PredictedScore || len(got.Decisions) != 1 {
		t.Errorf("GetLatest() = %+v, want %+v", got, snap)
	}

	if _, found, _ := store.GetLatest("unknown"); found {
		t.Error("GetLatest() found = true for unknown group, want false")
	}
}
