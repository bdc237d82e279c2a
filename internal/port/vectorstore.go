package port

import "ragstore/internal/domain"

// VectorStore is the boundary to the vector index. Implementations must
// be safe for concurrent use; conflicting writes to the same ID are
// serialized by the store.
type VectorStore interface {
	// EnsureCollection creates the backing collection if it does not
	// exist. Idempotent; safe to call on every startup.
	EnsureCollection(dimension int) error

	// Retrieve looks up points by ID. Missing IDs are skipped; an empty
	// result is not an error.
	Retrieve(ids []string) ([]domain.Point, error)

	// Upsert inserts or replaces points by ID. Replacement is atomic:
	// there is no intermediate state where a point is absent.
	Upsert(points []domain.Point) error

	// Delete removes points by ID. Deleting an absent ID is a no-op.
	Delete(ids []string) error

	// DeleteAll removes every point in the collection.
	DeleteAll() error

	// Search returns up to limit points ranked by descending similarity
	// to the query vector, excluding scores below scoreThreshold.
	Search(vector []float32, limit int, scoreThreshold float64) ([]domain.ScoredPoint, error)

	// Scroll pages through the collection in a stable order. The offset
	// is an opaque cursor: nil for the first page, then the previous
	// page's NextOffset unchanged. Returned points carry payloads but
	// no vectors.
	Scroll(limit int, offset any) (domain.Page, error)
}
