package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Generate(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("got path %q, want /api/generate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "# Widgets\n\nDocs.", Done: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3", Options{MaxTokens: 100, Temperature: 0.1}, time.Second)
	out, err := c.Generate(context.Background(), "document this repo")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "# Widgets\n\nDocs." {
		t.Errorf("got %q", out)
	}

	if gotReq.Model != "llama3" {
		t.Errorf("got model %q, want llama3", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("stream should be false")
	}
	if gotReq.Options.NumPredict != 100 {
		t.Errorf("got num_predict=%d, want 100", gotReq.Options.NumPredict)
	}
}

func TestClient_GenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3", Options{}, time.Second)
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Error("server error should surface as error")
	}
}

func TestClient_GenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Error: "model not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "missing", Options{}, time.Second)
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Error("api error field should surface as error")
	}
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("got path %q, want /api/tags", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3", Options{}, time.Second)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
