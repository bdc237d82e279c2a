package embedding

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIEmbedder_NormalizesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Input) != 1 || req.Input[0] != "hello" {
			t.Errorf("unexpected input: %v", req.Input)
		}
		json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Embedding: []float32{3, 4}, Index: 0}},
		})
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(Options{
		BaseURL:   srv.URL,
		Model:     "all-minilm",
		Dimension: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	vec, err := e.Embed("hello")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(vec[0])-0.6) > 1e-6 || math.Abs(float64(vec[1])-0.8) > 1e-6 {
		t.Errorf("expected normalized [0.6 0.8], got %v", vec)
	}
}

func TestOpenAIEmbedder_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Embedding: []float32{1, 2, 3}, Index: 0}},
		})
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(Options{BaseURL: srv.URL, Model: "all-minilm", Dimension: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed("hello"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestMockEmbedder_UnitNorm(t *testing.T) {
	e := NewMockEmbedder(64)
	vec, err := e.Embed("the sky is blue")
	if err != nil {
		t.Fatal(err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("expected unit vector, got squared norm %f", sum)
	}
}

func TestMockEmbedder_SharedWordsScoreHigher(t *testing.T) {
	e := NewMockEmbedder(64)
	query, _ := e.Embed("sky color")
	related, _ := e.Embed("The sky is blue")
	unrelated, _ := e.Embed("database connection pooling")

	if dot(query, related) <= dot(query, unrelated) {
		t.Error("expected related text to score higher than unrelated text")
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
