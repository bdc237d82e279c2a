package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ragstore/internal/usecase"
)

type embedRequest struct {
	ID       any            `json:"id"`
	Text     *string        `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type retrieveResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type listEntry struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

type listResponse struct {
	Total      int         `json:"total"`
	Embeddings []listEntry `json:"embeddings"`
	NextOffset any         `json:"next_offset,omitempty"`
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, ok := idToString(req.ID)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "id must be a string or a number")
		return
	}
	if req.Text == nil {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	updated, err := s.svc.Upsert(id, *req.Text, req.Metadata)
	if err != nil {
		s.logger.Printf("embed %s: %v", id, err)
		s.writeError(w, http.StatusInternalServerError, "Failed to process embedding")
		return
	}

	message := "New embedding inserted"
	if updated {
		message = "Embedding updated"
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: message})
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAll(); err != nil {
		s.logger.Printf("delete all: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to remove all embeddings")
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "All embeddings removed"})
}

func (s *Server) handleDeleteByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteOne(id); err != nil {
		s.logger.Printf("delete %s: %v", id, err)
		s.writeError(w, http.StatusInternalServerError, "Failed to remove embedding")
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Success: true,
		Message: fmt.Sprintf("Embedding with ID %s removed", id),
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	topK := s.defaultTopK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		topK = n
	}

	scored, err := s.svc.Retrieve(query, topK)
	if err != nil {
		var verr *usecase.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.logger.Printf("retrieve %q: %v", query, err)
		s.writeError(w, http.StatusInternalServerError, "Retrieval failed")
		return
	}

	results := make([]retrieveResult, 0, len(scored))
	for _, sp := range scored {
		results = append(results, retrieveResult{
			ID:      sp.Point.ID,
			Score:   sp.Score,
			Payload: sp.Point.Payload,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(r, "limit", 0)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset := cursorQuery(r, "offset")

	page, err := s.svc.List(limit, offset)
	if err != nil {
		s.logger.Printf("list: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to list stored embeddings")
		return
	}

	entries := make([]listEntry, 0, len(page.Points))
	for _, p := range page.Points {
		entries = append(entries, listEntry{ID: p.ID, Payload: p.Payload})
	}
	s.writeJSON(w, http.StatusOK, listResponse{
		Total:      len(entries),
		Embeddings: entries,
		NextOffset: page.NextOffset,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("failed to write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// idToString accepts the string-or-number union the API allows for IDs.
func idToString(id any) (string, bool) {
	switch v := id.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func intQuery(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// cursorQuery reads an opaque scroll cursor: absent means first page,
// a numeric value stays numeric, anything else passes through as a
// string (Qdrant emits point-ID cursors).
func cursorQuery(r *http.Request, key string) any {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}
