// Package memstore is an in-memory VectorStore using brute-force cosine
// search. Backs tests and the "memory" store type.
package memstore

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"ragstore/internal/domain"
)

type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]domain.Point
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string]domain.Point)}
}

func (s *MemoryStore) EnsureCollection(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension: %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("collection exists with dimension %d, requested %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *MemoryStore) Retrieve(ids []string) ([]domain.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Point
	for _, id := range ids {
		if p, ok := s.points[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) Upsert(points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(p.Vector))
		}
	}
	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) Delete(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.points, id)
	}
	return nil
}

func (s *MemoryStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = make(map[string]domain.Point)
	return nil
}

func (s *MemoryStore) Search(vector []float32, limit int, scoreThreshold float64) ([]domain.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(vector))
	}

	// Vectors are unit length, so the dot product is the cosine score.
	var results []domain.ScoredPoint
	for _, p := range s.points {
		score := dot(vector, p.Vector)
		if score < scoreThreshold {
			continue
		}
		results = append(results, domain.ScoredPoint{Point: p, Score: score})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Scroll(limit int, offset any) (domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, err := offsetIndex(offset)
	if err != nil {
		return domain.Page{}, err
	}

	ids := make([]string, 0, len(s.points))
	for id := range s.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if start > len(ids) {
		start = len(ids)
	}
	end := start + limit
	if limit <= 0 || end > len(ids) {
		end = len(ids)
	}

	page := domain.Page{Points: make([]domain.Point, 0, end-start)}
	for _, id := range ids[start:end] {
		p := s.points[id]
		// Scroll results carry payloads only.
		page.Points = append(page.Points, domain.Point{ID: p.ID, Payload: p.Payload})
	}
	if end < len(ids) {
		page.NextOffset = end
	}
	return page, nil
}

// offsetIndex interprets an opaque scroll cursor as a numeric position.
// Local stores only ever emit ints, but a cursor may arrive as JSON
// (float64) or as a query-string value, so those forms are accepted too.
func offsetIndex(offset any) (int, error) {
	var n int
	switch v := offset.(type) {
	case nil:
		return 0, nil
	case int:
		n = v
	case float64:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid scroll offset %q", v)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("invalid scroll offset type %T", offset)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// Count returns the number of stored points.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
