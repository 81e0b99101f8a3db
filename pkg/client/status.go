// Package client provides an HTTP client for the autoscaler status API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nexslice/scalecast/pkg/storage"
)

// StatusClient fetches iteration snapshots from the autoscaler status API.
// It is safe for concurrent use by multiple goroutines.
type StatusClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewStatusClient creates a client for the autoscaler status API. The
// baseURL should include the scheme and host (e.g. "http://localhost:8080").
// Requests time out after 5 seconds.
func NewStatusClient(baseURL string) *StatusClient {
	return NewStatusClientWithTimeout(baseURL, 5*time.Second)
}

// NewStatusClientWithTimeout creates a client with a custom request timeout.
func NewStatusClientWithTimeout(baseURL string, timeout time.Duration) *StatusClient {
	return &StatusClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// StatusResult contains the snapshot and whether the server marked it stale.
type StatusResult struct {
	Snapshot storage.Snapshot
	Stale    bool
}

// GetSnapshot fetches the latest iteration snapshot for a coordination
// group. Returns an error if the group is unknown to the autoscaler.
func (c *StatusClient) GetSnapshot(ctx context.Context, group string) (*StatusResult, error) {
	if group == "" {
		return nil, fmt.Errorf("group cannot be empty")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/status/current"
	query := u.Query()
	query.Set("group", group)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("snapshot not found for group %q", group)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	stale := resp.Header.Get("X-Scalecast-Stale") == "true"

	var snap storage.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &StatusResult{
		Snapshot: snap,
		Stale:    stale,
	}, nil
}

// IsStale reports whether a snapshot is older than staleAfter.
func IsStale(snap storage.Snapshot, staleAfter time.Duration) bool {
	return time.Since(snap.GeneratedAt) > staleAfter
}
