package usecase

import (
	"fmt"

	"ragstore/internal/domain"
	"ragstore/internal/port"
)

const (
	// DefaultListLimit is the page size when the caller does not set one.
	DefaultListLimit = 50
)

// EmbeddingService orchestrates the embedder and the vector store:
// upsert, delete, similarity retrieve, and paginated list.
type EmbeddingService struct {
	embedder       port.Embedder
	store          port.VectorStore
	scoreThreshold float64
	maxTopK        int
}

func NewEmbeddingService(embedder port.Embedder, store port.VectorStore, scoreThreshold float64, maxTopK int) *EmbeddingService {
	if maxTopK <= 0 {
		maxTopK = 50
	}
	return &EmbeddingService{
		embedder:       embedder,
		store:          store,
		scoreThreshold: scoreThreshold,
		maxTopK:        maxTopK,
	}
}

// Upsert embeds text and stores it under id, replacing any existing
// point. Returns whether an existing point was replaced. The updated
// flag is computed best effort before the write and can be stale under
// concurrent upserts to the same id; the write itself is a plain
// store-native overwrite, so no duplicate can ever appear.
func (s *EmbeddingService) Upsert(id, text string, metadata map[string]any) (updated bool, err error) {
	vector, err := s.embedder.Embed(text)
	if err != nil {
		return false, &EmbedError{Err: err}
	}

	// A retrieve failure (collection not ready yet) counts as "does not
	// exist"; it only affects the reported message, never the write.
	if existing, err := s.store.Retrieve([]string{id}); err == nil && len(existing) > 0 {
		updated = true
	}

	point := domain.NewPoint(id, vector, text, metadata)
	if err := s.store.Upsert([]domain.Point{point}); err != nil {
		return updated, &StoreError{Op: "upsert", Err: err}
	}
	return updated, nil
}

// DeleteOne removes the point with the given id. Deleting an absent id
// succeeds; delete is idempotent.
func (s *EmbeddingService) DeleteOne(id string) error {
	if err := s.store.Delete([]string{id}); err != nil {
		return &StoreError{Op: "delete", Err: err}
	}
	return nil
}

// DeleteAll removes every point in the collection. Destructive and
// unconditional; callers gate this at a higher layer.
func (s *EmbeddingService) DeleteAll() error {
	if err := s.store.DeleteAll(); err != nil {
		return &StoreError{Op: "delete all", Err: err}
	}
	return nil
}

// Retrieve embeds the query and returns up to topK points ranked by
// descending similarity, excluding scores below the configured
// threshold. An empty result is not an error.
func (s *EmbeddingService) Retrieve(query string, topK int) ([]domain.ScoredPoint, error) {
	if topK < 1 || topK > s.maxTopK {
		return nil, &ValidationError{Field: "top_k", Msg: fmt.Sprintf("must be between 1 and %d", s.maxTopK)}
	}

	vector, err := s.embedder.Embed(query)
	if err != nil {
		return nil, &EmbedError{Err: err}
	}

	results, err := s.store.Search(vector, topK, s.scoreThreshold)
	if err != nil {
		return nil, &StoreError{Op: "search", Err: err}
	}
	return results, nil
}

// List returns one page of stored points with payloads but without
// vectors, plus the cursor of the next page (nil when exhausted). The
// offset is the opaque cursor from the previous page's NextOffset, or
// nil for the first page.
func (s *EmbeddingService) List(limit int, offset any) (domain.Page, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	page, err := s.store.Scroll(limit, offset)
	if err != nil {
		return domain.Page{}, &StoreError{Op: "scroll", Err: err}
	}
	return page, nil
}
