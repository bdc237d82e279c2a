package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ragstore/internal/adapter/embedding"
	"ragstore/internal/adapter/memstore"
	"ragstore/internal/domain"
	"ragstore/internal/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memstore.NewMemoryStore()
	if err := store.EnsureCollection(64); err != nil {
		t.Fatal(err)
	}
	svc := usecase.NewEmbeddingService(embedding.NewMockEmbedder(64), store, 0.2, 50)
	srv := New(svc, 5, "http://localhost:8883", log.New(io.Discard, "", 0))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postEmbed(t *testing.T, ts *httptest.Server, body string) map[string]any {
	t.Helper()
	resp, err := http.Post(ts.URL+"/embed", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("embed returned %d: %s", resp.StatusCode, data)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestEmbed_InsertThenUpdate(t *testing.T) {
	ts := newTestServer(t)

	out := postEmbed(t, ts, `{"id":"doc1","text":"The sky is blue","metadata":{"source":"test"}}`)
	if out["success"] != true || out["message"] != "New embedding inserted" {
		t.Errorf("unexpected insert response: %v", out)
	}

	out = postEmbed(t, ts, `{"id":"doc1","text":"The sky is very blue"}`)
	if out["message"] != "Embedding updated" {
		t.Errorf("unexpected update response: %v", out)
	}
}

func TestEmbed_NumericID(t *testing.T) {
	ts := newTestServer(t)
	out := postEmbed(t, ts, `{"id":42,"text":"numeric id"}`)
	if out["success"] != true {
		t.Errorf("numeric id rejected: %v", out)
	}
}

func TestEmbed_MissingText(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/embed", "application/json", strings.NewReader(`{"id":"doc1"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing text, got %d", resp.StatusCode)
	}
}

func TestRetrieve_ReturnsRankedResults(t *testing.T) {
	ts := newTestServer(t)
	postEmbed(t, ts, `{"id":"doc1","text":"The sky is blue","metadata":{"source":"test"}}`)
	postEmbed(t, ts, `{"id":"doc2","text":"Database connection pooling"}`)

	resp, err := http.Get(ts.URL + "/retrieve?q=sky+color&top_k=1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retrieve returned %d", resp.StatusCode)
	}

	var out struct {
		Results []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out.Results))
	}
	if out.Results[0].ID != "doc1" {
		t.Errorf("expected doc1, got %s", out.Results[0].ID)
	}
	if out.Results[0].Payload["text"] != "The sky is blue" {
		t.Errorf("unexpected payload: %v", out.Results[0].Payload)
	}
}

func TestRetrieve_RejectsBadTopK(t *testing.T) {
	ts := newTestServer(t)

	for _, q := range []string{"q=x&top_k=0", "q=x&top_k=51", "q=x&top_k=abc"} {
		resp, err := http.Get(ts.URL + "/retrieve?" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, resp.StatusCode)
		}
	}
}

func TestDeleteByID_Idempotent(t *testing.T) {
	ts := newTestServer(t)
	postEmbed(t, ts, `{"id":"doc1","text":"to be deleted"}`)

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/embed/doc1", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		var out map[string]any
		json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || out["success"] != true {
			t.Errorf("delete call %d failed: %d %v", i+1, resp.StatusCode, out)
		}
	}
}

func TestDeleteAll_ThenListEmpty(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 5; i++ {
		postEmbed(t, ts, fmt.Sprintf(`{"id":"doc%d","text":"text %d"}`, i, i))
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/embed/all", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete all returned %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/list")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out struct {
		Total      int  `json:"total"`
		NextOffset *int `json:"next_offset"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 0 || out.NextOffset != nil {
		t.Errorf("expected empty list, got %+v", out)
	}
}

func TestList_Pagination(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 5; i++ {
		postEmbed(t, ts, fmt.Sprintf(`{"id":"doc%d","text":"text %d"}`, i, i))
	}

	seen := make(map[string]bool)
	offset := 0
	for {
		resp, err := http.Get(fmt.Sprintf("%s/list?limit=2&offset=%d", ts.URL, offset))
		if err != nil {
			t.Fatal(err)
		}
		var out struct {
			Total      int `json:"total"`
			Embeddings []struct {
				ID string `json:"id"`
			} `json:"embeddings"`
			NextOffset *int `json:"next_offset"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if out.Total != len(out.Embeddings) {
			t.Errorf("total %d does not match page size %d", out.Total, len(out.Embeddings))
		}
		for _, e := range out.Embeddings {
			if seen[e.ID] {
				t.Errorf("point %s returned twice", e.ID)
			}
			seen[e.ID] = true
		}
		if out.NextOffset == nil {
			break
		}
		offset = *out.NextOffset
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 distinct points, got %d", len(seen))
	}
}

// cursorStore returns point-ID cursors the way Qdrant does, so the
// handler must carry them as opaque strings rather than integers.
type cursorStore struct {
	memstore.MemoryStore
	gotOffset any
}

func (c *cursorStore) Scroll(limit int, offset any) (domain.Page, error) {
	c.gotOffset = offset
	if offset == nil {
		return domain.Page{
			Points:     []domain.Point{{ID: "a", Payload: map[string]any{"text": "t"}}},
			NextOffset: "c0ffee00-9dad-11d1-80b4-00c04fd430c8",
		}, nil
	}
	return domain.Page{
		Points: []domain.Point{{ID: "b", Payload: map[string]any{"text": "u"}}},
	}, nil
}

func TestList_StringCursorRoundTrips(t *testing.T) {
	store := &cursorStore{}
	svc := usecase.NewEmbeddingService(embedding.NewMockEmbedder(64), store, 0.2, 50)
	srv := New(svc, 5, "", log.New(io.Discard, "", 0))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/list?limit=1")
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		NextOffset any `json:"next_offset"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	cursor, ok := out.NextOffset.(string)
	if !ok || cursor != "c0ffee00-9dad-11d1-80b4-00c04fd430c8" {
		t.Fatalf("expected string cursor in next_offset, got %v (%T)", out.NextOffset, out.NextOffset)
	}

	resp, err = http.Get(ts.URL + "/list?limit=1&offset=" + cursor)
	if err != nil {
		t.Fatal(err)
	}
	out.NextOffset = nil // next_offset is omitted when exhausted; clear the stale value from the first decode
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if store.gotOffset != cursor {
		t.Errorf("expected cursor passed through unchanged, store saw %v", store.gotOffset)
	}
	if out.NextOffset != nil {
		t.Errorf("expected exhausted listing, got next_offset %v", out.NextOffset)
	}
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/embed", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:8883" {
		t.Errorf("unexpected allow-origin: %q", got)
	}
}

func TestCORSDisabled_NoPreflightShortCircuit(t *testing.T) {
	store := memstore.NewMemoryStore()
	if err := store.EnsureCollection(64); err != nil {
		t.Fatal(err)
	}
	svc := usecase.NewEmbeddingService(embedding.NewMockEmbedder(64), store, 0.2, 50)
	srv := New(svc, 5, "", log.New(io.Discard, "", 0))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/embed", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 with CORS disabled, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers, got allow-origin %q", got)
	}
}
