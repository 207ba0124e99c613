// Package api exposes image generation over HTTP and provides a client for it.
//
// The server answers POST /api/generate with the normalized vendor result and
// maps pipeline errors to status codes. Client calls that endpoint and
// satisfies editor.Generator, so an editor session can generate through a
// remote server instead of holding the vendor key itself.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ironsheep/dudel/internal/generation"
)

// MaxRequestBytes bounds a generate request body.
const MaxRequestBytes = 32 << 20

// Generator is the pipeline the server drives. *generation.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) ([]byte, error)
}

// Server serves the generation endpoint.
type Server struct {
	gen     Generator
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a Server. A zero timeout leaves requests bounded only by the
// client connection.
func New(gen Generator, logger *slog.Logger, timeout time.Duration) (*Server, error) {
	if gen == nil {
		return nil, errors.New("generator required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{gen: gen, logger: logger, timeout: timeout}, nil
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/healthz", s.handleHealth)
	return s.logMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req generation.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	payload, err := s.gen.Generate(ctx, req)
	if err != nil {
		s.writeGenerateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// writeGenerateError maps a pipeline error to a response. Vendor submission
// errors are passed through with their own status and body.
func (s *Server) writeGenerateError(w http.ResponseWriter, err error) {
	var subErr *generation.SubmissionError
	switch {
	case errors.As(err, &subErr):
		s.logger.Warn("vendor rejected submission", "status", subErr.Status)
		ct := "text/plain; charset=utf-8"
		if gjson.ValidBytes(subErr.Body) {
			ct = "application/json"
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(subErr.Status)
		_, _ = w.Write(subErr.Body)
	case errors.Is(err, generation.ErrMissingImage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
