// Package telemetry collects the controller's raw input signals from a
// time-series database and shapes them into feature samples. The Prometheus
// client speaks the HTTP instant-query API; the Collector owns the four
// named signal queries and degrades gracefully when any of them fails.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Querier evaluates a query expression to a single scalar. found=false with
// a nil error means the query succeeded but matched no series; callers map
// that to a default value rather than treating it as a failure.
type Querier interface {
	Scalar(ctx context.Context, query string) (value float64, found bool, err error)
}

// Client evaluates PromQL expressions against the Prometheus HTTP API
// (/api/v1/query). If multiple series match, the first sample is used.
type Client struct {
	// ServerURL is the base URL to Prometheus, e.g. http://prometheus.monitoring.svc:9090
	ServerURL string
	// HTTPClient is optional; if nil a default client with timeout is used.
	HTTPClient *http.Client
}

// Scalar implements Querier. It issues an instant query and returns the
// value of the first resulting sample. An empty result is reported as
// found=false, never as an error.
func (c *Client) Scalar(ctx context.Context, query string) (float64, bool, error) {
	if c.ServerURL == "" || query == "" {
		return 0, false, errors.New("prometheus client: ServerURL and query are required")
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return 0, false, fmt.Errorf("invalid ServerURL: %w", err)
	}
	u.Path = "/api/v1/query"
	q := u.Query()
	q.Set("query", query)
	u.RawQuery = q.Encode()

	cli := c.HTTPClient
	if cli == nil {
		cli = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cli.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("prometheus: status %d", resp.StatusCode)
	}

	var pr prometheusQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return 0, false, fmt.Errorf("decode prometheus response: %w", err)
	}
	if pr.Status != "success" {
		return 0, false, fmt.Errorf("prometheus status: %s", pr.Status)
	}

	if len(pr.Data.Result) == 0 {
		return 0, false, nil
	}

	v, err := parseSampleValue(pr.Data.Result[0].Value)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

type prometheusQueryResponse struct {
	Status string              `json:"status"`
	Data   prometheusQueryData `json:"data"`
}

type prometheusQueryData struct {
	ResultType string                  `json:"resultType"`
	Result     []prometheusQuerySample `json:"result"`
}

type prometheusQuerySample struct {
	Metric map[string]string `json:"metric"`
	// Value is [ <unix_time_float>, "<value_string>" ]
	Value []any `json:"value"`
}

func parseSampleValue(pair []any) (float64, error) {
	if len(pair) != 2 {
		return 0, fmt.Errorf("invalid value pair length: %d", len(pair))
	}

	switch v := pair[1].(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("parse value: %w", err)
		}
		return f, nil
	case float64:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("parse value: %w", err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected value type %T", pair[1])
	}
}
