// Package server exposes the embedding service over an HTTP JSON API:
//
//	POST   /embed        insert or update an embedding
//	DELETE /embed/all    remove all embeddings
//	DELETE /embed/{id}   remove one embedding
//	GET    /retrieve     similarity search
//	GET    /list         paginated listing
package server

import (
	"log"
	"net/http"

	"ragstore/internal/usecase"
)

type Server struct {
	svc         *usecase.EmbeddingService
	defaultTopK int
	corsOrigin  string
	logger      *log.Logger
}

func New(svc *usecase.EmbeddingService, defaultTopK int, corsOrigin string, logger *log.Logger) *Server {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Server{
		svc:         svc,
		defaultTopK: defaultTopK,
		corsOrigin:  corsOrigin,
		logger:      logger,
	}
}

// Handler returns the route tree with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /embed", s.handleEmbed)
	mux.HandleFunc("DELETE /embed/all", s.handleDeleteAll)
	mux.HandleFunc("DELETE /embed/{id}", s.handleDeleteByID)
	mux.HandleFunc("GET /retrieve", s.handleRetrieve)
	mux.HandleFunc("GET /list", s.handleList)
	return s.cors(mux)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		// Preflight is only answered when CORS is configured; with it
		// disabled the mux should reject unknown methods as usual.
		if s.corsOrigin != "" && r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
