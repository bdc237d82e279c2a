// Package qdrant is a minimal REST client for a Qdrant vector index.
// It covers exactly the surface the embedding service needs: collection
// create-if-absent, point upsert/retrieve/delete, similarity search, and
// cursor-based scroll.
package qdrant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ragstore/internal/domain"
)

type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection with cosine distance if it is
// missing. An already-existing collection (409) is not an error.
func (s *Store) EnsureCollection(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension: %d", dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	err := s.do(http.MethodPut, fmt.Sprintf("/collections/%s", s.collection), body, nil)
	if isStatus(err, http.StatusConflict) {
		return nil
	}
	return err
}

func (s *Store) Retrieve(ids []string) ([]domain.Point, error) {
	req := map[string]any{
		"ids":          encodeIDs(ids),
		"with_payload": true,
	}
	var resp struct {
		Result []rawPoint `json:"result"`
	}
	if err := s.do(http.MethodPost, fmt.Sprintf("/collections/%s/points", s.collection), req, &resp); err != nil {
		return nil, err
	}
	points := make([]domain.Point, 0, len(resp.Result))
	for _, r := range resp.Result {
		points = append(points, r.toDomain())
	}
	return points, nil
}

func (s *Store) Upsert(points []domain.Point) error {
	raw := make([]map[string]any, len(points))
	for i, p := range points {
		raw[i] = map[string]any{
			"id":      encodeID(p.ID),
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": raw}
	return s.do(http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", s.collection), body, nil)
}

func (s *Store) Delete(ids []string) error {
	body := map[string]any{"points": encodeIDs(ids)}
	return s.do(http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", s.collection), body, nil)
}

// DeleteAll wipes the collection. Qdrant treats an empty filter as
// "match everything"; that convention stays confined to this adapter.
func (s *Store) DeleteAll() error {
	body := map[string]any{"filter": map[string]any{}}
	return s.do(http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", s.collection), body, nil)
}

func (s *Store) Search(vector []float32, limit int, scoreThreshold float64) ([]domain.ScoredPoint, error) {
	req := map[string]any{
		"vector":          vector,
		"limit":           limit,
		"with_payload":    true,
		"score_threshold": scoreThreshold,
	}
	var resp struct {
		Result []struct {
			rawPoint
			Score float64 `json:"score"`
		} `json:"result"`
	}
	if err := s.do(http.MethodPost, fmt.Sprintf("/collections/%s/points/search", s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.ScoredPoint, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.ScoredPoint{Point: r.toDomain(), Score: r.Score})
	}
	return results, nil
}

// Scroll pages through the collection. Qdrant's next_page_offset is a
// point ID (a UUID string for UUID points, a number for integer
// points), so the cursor is carried opaquely rather than decoded.
func (s *Store) Scroll(limit int, offset any) (domain.Page, error) {
	req := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	if offset != nil {
		req["offset"] = offset
	}
	var resp struct {
		Result struct {
			Points         []rawPoint `json:"points"`
			NextPageOffset any        `json:"next_page_offset"`
		} `json:"result"`
	}
	if err := s.do(http.MethodPost, fmt.Sprintf("/collections/%s/points/scroll", s.collection), req, &resp); err != nil {
		return domain.Page{}, err
	}
	page := domain.Page{
		Points:     make([]domain.Point, 0, len(resp.Result.Points)),
		NextOffset: resp.Result.NextPageOffset,
	}
	for _, r := range resp.Result.Points {
		page.Points = append(page.Points, r.toDomain())
	}
	return page, nil
}

// rawPoint is a point as Qdrant returns it; the ID may be a string or a
// number.
type rawPoint struct {
	ID      any            `json:"id"`
	Payload map[string]any `json:"payload"`
}

func (r rawPoint) toDomain() domain.Point {
	return domain.Point{ID: decodeID(r.ID), Payload: r.Payload}
}

// encodeID maps a string ID to what Qdrant accepts: numeric strings go
// out as unsigned integers, everything else as-is (UUIDs).
func encodeID(id string) any {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return n
	}
	return id
}

func encodeIDs(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = encodeID(id)
	}
	return out
}

func decodeID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

type statusError struct {
	status int
	body   string
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant request to %s failed with status %d: %s", e.url, e.status, e.body)
}

func isStatus(err error, status int) bool {
	se, ok := err.(*statusError)
	return ok && se.status == status
}

func (s *Store) do(method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(method, s.url+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read qdrant error response: %w", err)
		}
		preview := string(raw)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return &statusError{status: resp.StatusCode, body: preview, url: path}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode qdrant response: %w", err)
		}
	}
	return nil
}
