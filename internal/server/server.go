// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/assistant"
	"github.com/sadop/sadop/internal/executor"
)

// Handler routes one assistant request.
type Handler interface {
	Handle(ctx context.Context, message string) (*assistant.Response, error)
}

// SchemaSource provides the database schema dump.
type SchemaSource interface {
	Schema(ctx context.Context) (string, error)
	Execute(ctx context.Context, sqlText string) executor.Result
}

// Server wires the HTTP routes.
type Server struct {
	handler Handler
	db      SchemaSource
	log     *zap.Logger
	router  chi.Router
}

// userQuery is the single inbound request shape.
type userQuery struct {
	Message string `json:"message"`
}

// sqlRequest is the inbound shape for guarded direct execution.
type sqlRequest struct {
	SQL string `json:"sql"`
}

// New creates a server over the given assistant handler and executor.
func New(handler Handler, db SchemaSource, log *zap.Logger) *Server {
	s := &Server{
		handler: handler,
		db:      db,
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Post("/assistant", s.handleAssistant)
	r.Post("/chat", s.handleAssistant) // alias kept for existing clients
	r.Post("/query", s.handleQuery)
	r.Get("/schema", s.handleSchema)

	s.router = r

	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var query userQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if query.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	response, err := s.handler.Handle(r.Context(), query.Message)
	if err != nil {
		s.log.Error("request handling failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})

		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req sqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.SQL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sql is required"})
		return
	}

	// Rejections and database failures are structured results, not HTTP errors.
	writeJSON(w, http.StatusOK, s.db.Execute(r.Context(), req.SQL))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.db.Schema(r.Context())
	if err != nil {
		s.log.Error("schema introspection failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"schema": schema})
}

// requestLogger tags each request with an id and logs method, path, status,
// and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		ww.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// corsMiddleware allows all origins, matching the permissive policy of the
// browser frontend this service was built for.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}
