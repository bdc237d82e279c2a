package domain

// PayloadTextKey is the payload field holding the embedded source text.
// It is always present on a stored point and always matches the text the
// vector was generated from.
const PayloadTextKey = "text"

// Point is one stored entry in the vector index: a unique ID, the
// embedding vector, and a payload carrying the source text plus any
// caller-supplied metadata merged at the top level.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// NewPoint builds a point whose payload contains the given metadata plus
// the text field. The text field is set last so a metadata key can never
// make the stored text diverge from the embedded text.
func NewPoint(id string, vector []float32, text string, metadata map[string]any) Point {
	payload := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	payload[PayloadTextKey] = text
	return Point{ID: id, Vector: vector, Payload: payload}
}

// Text returns the embedded source text stored in the payload.
func (p Point) Text() string {
	s, _ := p.Payload[PayloadTextKey].(string)
	return s
}

// ScoredPoint is a search hit: a point and its similarity score.
// Scores are cosine similarities over unit vectors, higher is better.
type ScoredPoint struct {
	Point Point
	Score float64
}

// Page is one scroll page over a collection. NextOffset is the opaque
// cursor of the next page, nil when no further pages exist. Local
// stores emit numeric positions; Qdrant emits point-ID cursors, so
// callers must pass the token back unchanged rather than interpret it.
type Page struct {
	Points     []Point
	NextOffset any
}
