package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

type recordedCall struct {
	method string
	path   string
	body   map[string]any
}

func newEnsureServer(t *testing.T, exists bool, calls *[]recordedCall) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&call.body)
		}
		*calls = append(*calls, call)
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{"exists": exists},
				"status": "ok",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{}, "status": "ok"})
	}))
}

func TestEnsureCollectionCreatesCreatedAtIndex(t *testing.T) {
	var calls []recordedCall
	srv := newEnsureServer(t, false, &calls)
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL}, logger.NewNop())
	if err := c.EnsureCollection(context.Background(), "memories", 3072); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("calls = %d, want exists + create + index", len(calls))
	}
	create := calls[1]
	if create.method != http.MethodPut || create.path != "/collections/memories" {
		t.Errorf("create call = %s %s", create.method, create.path)
	}
	idx := calls[2]
	if idx.method != http.MethodPut || idx.path != "/collections/memories/index" {
		t.Fatalf("index call = %s %s", idx.method, idx.path)
	}
	if idx.body["field_name"] != "created_at" || idx.body["field_schema"] != "datetime" {
		t.Errorf("index body = %v", idx.body)
	}
}

func TestEnsureCollectionIndexesExistingCollection(t *testing.T) {
	var calls []recordedCall
	srv := newEnsureServer(t, true, &calls)
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL}, logger.NewNop())
	if err := c.EnsureCollection(context.Background(), "memories", 3072); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}

	// No create call, but the index is still ensured.
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want exists + index", len(calls))
	}
	if calls[1].path != "/collections/memories/index" {
		t.Errorf("second call = %s", calls[1].path)
	}
}
