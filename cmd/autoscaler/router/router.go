// Package router configures HTTP routes for the autoscaler's status API.
//
// Routes configured:
//   - GET /status/current?group=<name> - Latest iteration snapshot
//   - GET /healthz - Health check endpoint (returns 200 OK)
//   - GET /metrics - Prometheus metrics endpoint
//
// The /status/current endpoint returns the latest snapshot for a
// coordination group as JSON: the observed signals, composite score, model
// state, predicted score, and per-target decisions. Snapshots older than
// the stale threshold include an X-Scalecast-Stale header.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexslice/scalecast/pkg/httpx"
	"github.com/nexslice/scalecast/pkg/storage"
)

// SetupRoutes configures HTTP endpoints for the autoscaler.
func SetupRoutes(store storage.Store, staleAfter time.Duration, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/healthz", httpx.HealthHandler())
	mux.HandleFunc("/status/current", handleGetSnapshot(store, staleAfter, logger))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// handleGetSnapshot returns a handler for GET /status/current?group=<name>.
func handleGetSnapshot(store storage.Store, staleAfter time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := r.URL.Query().Get("group")
		if group == "" {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "group parameter required")
			return
		}

		snapshot, found, err := store.GetLatest(group)
		if err != nil {
			logger.Error("failed to get snapshot", "group", group, "error", err)
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !found {
			httpx.WriteErrorMessage(w, http.StatusNotFound, fmt.Sprintf("snapshot not found for group %q", group))
			return
		}

		if time.Since(snapshot.GeneratedAt) > staleAfter {
			w.Header().Set("X-Scalecast-Stale", "true")
		}

		httpx.WriteJSON(w, http.StatusOK, snapshot)
	}
}
