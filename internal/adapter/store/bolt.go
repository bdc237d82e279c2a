// Package store provides a BoltDB-persisted VectorStore for deployments
// that want local durability without running a vector index server.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"go.etcd.io/bbolt"

	"ragstore/internal/domain"
)

var (
	bucketPoints = []byte("points")
	bucketMeta   = []byte("meta")
	keyDimension = []byte("dimension")
)

// BoltVectorStore keeps points in a BoltDB bucket with an in-memory
// cache for search. Brute-force cosine search; fine for the collection
// sizes a single-node deployment holds.
type BoltVectorStore struct {
	db *bbolt.DB

	mu        sync.RWMutex
	dimension int
	points    map[string]storedPoint
}

type storedPoint struct {
	Vector  []float32      `json:"v"`
	Payload map[string]any `json:"p,omitempty"`
}

func NewBoltVectorStore(path string) (*BoltVectorStore, error) {
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	s := &BoltVectorStore{
		db:     db,
		points: make(map[string]storedPoint),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load points: %w", err)
	}
	return s, nil
}

func (s *BoltVectorStore) Close() error {
	return s.db.Close()
}

func (s *BoltVectorStore) load() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if raw := meta.Get(keyDimension); raw != nil {
			dim, err := strconv.Atoi(string(raw))
			if err != nil {
				return fmt.Errorf("corrupt dimension record %q", raw)
			}
			s.dimension = dim
		}

		b, err := tx.CreateBucketIfNotExists(bucketPoints)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var sp storedPoint
			if err := json.Unmarshal(v, &sp); err != nil {
				return nil // skip corrupted entries
			}
			s.points[string(k)] = sp
			return nil
		})
	})
}

// EnsureCollection fixes the vector dimension for the file. The
// dimension is persisted so reopening an existing file under a
// different embedding configuration fails instead of silently mixing
// vector sizes.
func (s *BoltVectorStore) EnsureCollection(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension: %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("collection exists with dimension %d, requested %d", s.dimension, dimension)
	}
	if s.dimension == 0 {
		err := s.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket(bucketMeta).Put(keyDimension, []byte(strconv.Itoa(dimension)))
		})
		if err != nil {
			return fmt.Errorf("failed to persist dimension: %w", err)
		}
	}
	s.dimension = dimension
	return nil
}

func (s *BoltVectorStore) Retrieve(ids []string) ([]domain.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Point
	for _, id := range ids {
		if sp, ok := s.points[id]; ok {
			out = append(out, domain.Point{ID: id, Vector: sp.Vector, Payload: sp.Payload})
		}
	}
	return out, nil
}

func (s *BoltVectorStore) Upsert(points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(p.Vector))
		}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPoints)
		if b == nil {
			return fmt.Errorf("points bucket not found")
		}
		for _, p := range points {
			sp := storedPoint{Vector: p.Vector, Payload: p.Payload}
			data, err := json.Marshal(sp)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(p.ID), data); err != nil {
				return err
			}
			s.points[p.ID] = sp
		}
		return nil
	})
}

func (s *BoltVectorStore) Delete(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPoints)
		if b == nil {
			return nil
		}
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
			delete(s.points, id)
		}
		return nil
	})
}

func (s *BoltVectorStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketPoints); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketPoints)
		return err
	})
	if err != nil {
		return err
	}
	s.points = make(map[string]storedPoint)
	return nil
}

func (s *BoltVectorStore) Search(vector []float32, limit int, scoreThreshold float64) ([]domain.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(vector))
	}

	var results []domain.ScoredPoint
	for id, sp := range s.points {
		score := dot(vector, sp.Vector)
		if score < scoreThreshold {
			continue
		}
		results = append(results, domain.ScoredPoint{
			Point: domain.Point{ID: id, Payload: sp.Payload},
			Score: score,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *BoltVectorStore) Scroll(limit int, offset any) (domain.Page, error) {
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
		page.Points = append(page.Points, domain.Point{ID: id, Payload: s.points[id].Payload})
	}
	if end < len(ids) {
		page.NextOffset = end
	}
	return page, nil
}

// offsetIndex interprets an opaque scroll cursor as a numeric position.
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
