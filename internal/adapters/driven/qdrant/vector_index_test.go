package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

func newTestIndex(url string) *VectorIndex {
	cfg := DefaultConfig(url)
	cfg.Collection = "test-docs"
	return NewVectorIndex(cfg)
}

func TestEnsureCollectionCreatesWhenMissing(t *testing.T) {
	var created map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/test-docs":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/test-docs":
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Errorf("decode create body: %v", err)
			}
			fmt.Fprint(w, `{"result":true,"status":"ok"}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	v := newTestIndex(server.URL)
	if err := v.EnsureCollection(context.Background(), 1536); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}

	vectors, ok := created["vectors"].(map[string]any)
	if !ok {
		t.Fatalf("create body missing vectors: %v", created)
	}
	if vectors["size"] != float64(1536) {
		t.Errorf("size = %v, want 1536", vectors["size"])
	}
	if vectors["distance"] != "Cosine" {
		t.Errorf("distance = %v, want Cosine", vectors["distance"])
	}
}

func TestEnsureCollectionIdempotent(t *testing.T) {
	creates := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			creates++
		}
		fmt.Fprint(w, `{"result":{"status":"green"}}`)
	}))
	defer server.Close()

	v := newTestIndex(server.URL)
	if err := v.EnsureCollection(context.Background(), 1536); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	if creates != 0 {
		t.Errorf("expected no create for existing collection, got %d", creates)
	}
}

func TestUpsertPoints(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/test-docs/points" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("expected wait=true")
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"result":{"status":"acknowledged"}}`)
	}))
	defer server.Close()

	v := newTestIndex(server.URL)
	err := v.UpsertPoints(context.Background(), []domain.VectorPoint{
		{ID: "p1", Vector: []float32{0.1, 0.2}, Payload: map[string]any{"text": "hello"}},
	})
	if err != nil {
		t.Fatalf("UpsertPoints: %v", err)
	}

	points, ok := body["points"].([]any)
	if !ok || len(points) != 1 {
		t.Fatalf("expected 1 point in body, got %v", body)
	}
}

func TestSearchWithFilterEncoding(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/test-docs/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"result":[
			{"id":"p1","score":0.92,"payload":{"text":"hello","requiredRole":"viewer"}},
			{"id":7,"score":0.85,"payload":{"text":"world","requiredRole":"employee"}}
		]}`)
	}))
	defer server.Close()

	v := newTestIndex(server.URL)
	filter := domain.MatchAnyRole([]string{"viewer", "employee"})

	points, err := v.SearchWithFilter(context.Background(), []float32{0.1, 0.2}, filter, 10, 0.5)
	if err != nil {
		t.Fatalf("SearchWithFilter: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].ID != "p1" || points[0].Score != 0.92 {
		t.Errorf("unexpected first point: %+v", points[0])
	}
	if points[1].ID != "7" {
		t.Errorf("numeric id not rendered as string: %+v", points[1])
	}

	if body["with_payload"] != true {
		t.Error("expected with_payload true")
	}
	if body["with_vector"] != false {
		t.Error("expected with_vector false")
	}

	encoded, _ := json.Marshal(body["filter"])
	want := `{"must":[{"key":"requiredRole","match":{"any":["viewer","employee"]}}]}`
	if string(encoded) != want {
		t.Errorf("filter = %s, want %s", encoded, want)
	}
}

func TestSearchOmitsZeroThreshold(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer server.Close()

	v := newTestIndex(server.URL)
	if _, err := v.Search(context.Background(), []float32{0, 0}, 1000, 0); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if _, present := body["score_threshold"]; present {
		t.Error("zero threshold should not be sent")
	}
	if _, present := body["filter"]; present {
		t.Error("nil filter should not be sent")
	}
}

func TestDeletePoints(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/test-docs/points/delete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"result":{"status":"acknowledged"}}`)
	}))
	defer server.Close()

	v := newTestIndex(server.URL)
	if err := v.DeletePoints(context.Background(), []string{"p1", "p2"}); err != nil {
		t.Fatalf("DeletePoints: %v", err)
	}

	points, ok := body["points"].([]any)
	if !ok || len(points) != 2 {
		t.Errorf("expected 2 ids, got %v", body)
	}
}

func TestDeletePointsEmpty(t *testing.T) {
	// No server: an empty id list must not make any request
	v := newTestIndex("http://127.0.0.1:0")
	if err := v.DeletePoints(context.Background(), nil); err != nil {
		t.Errorf("DeletePoints(nil) = %v, want nil", err)
	}
}

func TestAPIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("api-key"); got != "secret" {
			t.Errorf("api-key = %q", got)
		}
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer server.Close()

	cfg := DefaultConfig(server.URL)
	cfg.APIKey = "secret"
	v := NewVectorIndex(cfg)

	if err := v.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}
