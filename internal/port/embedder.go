package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed converts the text into a unit-normalized dense vector.
	// Empty text is accepted and produces a degenerate embedding.
	Embed(text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
