package embedding

import (
	"fmt"
	"sync"

	"ragstore/internal/port"
)

// Factory constructs the underlying embedder. Called at most once per
// successful initialization.
type Factory func() (port.Embedder, error)

// InitializationError reports that the embedding model could not be
// loaded. Embed-dependent operations fail with it until a load succeeds.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("embedder initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// Lazy defers embedder construction until first use. Concurrent first
// calls collapse into a single factory invocation; everyone waits on the
// same load. A failed load is not cached: the next call retries.
type Lazy struct {
	factory Factory

	mu       sync.Mutex
	embedder port.Embedder
}

func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

func (l *Lazy) get() (port.Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.embedder != nil {
		return l.embedder, nil
	}

	e, err := l.factory()
	if err != nil {
		return nil, &InitializationError{Err: err}
	}
	l.embedder = e
	return e, nil
}

// Ready forces initialization. Servers call this before accepting
// traffic so a broken model configuration fails at startup.
func (l *Lazy) Ready() error {
	_, err := l.get()
	return err
}

func (l *Lazy) Embed(text string) ([]float32, error) {
	e, err := l.get()
	if err != nil {
		return nil, err
	}
	return e.Embed(text)
}

func (l *Lazy) Dimension() int {
	e, err := l.get()
	if err != nil {
		return 0
	}
	return e.Dimension()
}

func (l *Lazy) ModelName() string {
	e, err := l.get()
	if err != nil {
		return ""
	}
	return e.ModelName()
}
