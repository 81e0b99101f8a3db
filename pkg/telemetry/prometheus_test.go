package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func promHandler(t *testing.T, body string, status int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("query") == "" {
			t.Error("missing query parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func TestClient_Scalar(t *testing.T) {
	body := `{"status":"success","data":{"resultType":"vector","result":[{"metric":{"job":"blackbox"},"value":[1748779200.123,"42.5"]}]}}`
	srv := httptest.NewServer(promHandler(t, body, http.StatusOK))
	defer srv.Close()

	c := &Client{ServerURL: srv.URL}
	got, found, err := c.Scalar(context.Background(), "up")
	if err != nil {
		t.Fatalf("Scalar() error = %v", err)
	}
	if !found {
		t.Fatal("Scalar() found = false, want true")
	}
	if got != 42.5 {
		t.Errorf("Scalar() = %v, want 42.5", got)
	}
}

func TestClient_Scalar_EmptyResult(t *testing.T) {
	body := `{"status":"success","data":{"resultType":"vector","result":[]}}`
	srv := httptest.NewServer(promHandler(t, body, http.StatusOK))
	defer srv.Close()

	c := &Client{ServerURL: srv.URL}
	got, found, err := c.Scalar(context.Background(), "up")
	if err != nil {
		t.Fatalf("Scalar() error = %v, want nil for empty result", err)
	}
	if found {
		t.Error("Scalar() found = true for empty result, want false")
	}
	if got != 0 {
		t.Errorf("Scalar() = %v, want 0", got)
	}
}

func TestClient_Scalar_HTTPError(t *testing.T) {
	srv := httptest.NewServer(promHandler(t, "oops", http.StatusInternalServerError))
	defer srv.Close()

	c := &Client{ServerURL: srv.URL}
	if _, _, err := c.Scalar(context.Background(), "up"); err == nil {
		t.Error("Scalar() error = nil for HTTP 500, want error")
	}
}

func TestClient_Scalar_ErrorStatus(t *testing.T) {
	body := `{"status":"error","errorType":"bad_data","error":"parse error"}`
	srv := httptest.NewServer(promHandler(t, body, http.StatusOK))
	defer srv.Close()

	c := &Client{ServerURL: srv.URL}
	if _, _, err := c.Scalar(context.Background(), "up"); err == nil {
		t.Error("Scalar() error = nil for error status, want error")
	}
}

func TestClient_Scalar_MissingConfig(t *testing.T) {
	c := &Client{}
	if _, _, err := c.Scalar(context.Background(), "up"); err == nil {
		t.Error("Scalar() error = nil without ServerURL, want error")
	}

	c = &Client{ServerURL: "http://localhost:9090"}
	if _, _, err := c.Scalar(context.Background(), ""); err == nil {
		t.Error("Scalar() error = nil with empty query, want error")
	}
}

func TestParseSampleValue(t *testing.T) {
	tests := []struct {
		name    string
		pair    []any
		want    float64
		wantErr bool
	}{
		{"string value", []any{1748779200.0, "3.14"}, 3.14, false},
		{"float value", []any{1748779200.0, 2.5}, 2.5, false},
		{"bad string", []any{1748779200.0, "NaN%"}, 0, true},
		{"short pair", []any{1748779200.0}, 0, true},
		{"wrong type", []any{1748779200.0, true}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSampleValue(tt.pair)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSampleValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseSampleValue() = %v, want %v", got, tt.want)
			}
		})
	}
}
