package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"workjournal/internal/amqp"
	"workjournal/internal/export"
	"workjournal/internal/notify"
	"workjournal/internal/services"
)

// Server exposes the week journal over a JSON API. The queue and the
// session folder grant are optional; export requests run inline when no
// queue is configured.
type Server struct {
	http.Server

	service *services.JournalService
	queue   *amqp.Client
	grant   *export.SessionGrant
	title   *notify.Title

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, service *services.JournalService, queue *amqp.Client, grant *export.SessionGrant, title *notify.Title) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service: service,
		queue:   queue,
		grant:   grant,
		title:   title,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("PUT /api/weeks/{date}", s.withRequestLogging(s.handleSaveWeek))
	mux.HandleFunc("GET /api/weeks/{date}", s.withRequestLogging(s.handleGetWeek))
	mux.HandleFunc("GET /api/weeks", s.withRequestLogging(s.handleGetYear))
	mux.HandleFunc("POST /api/export", s.withRequestLogging(s.handleExport))
	mux.HandleFunc("POST /api/export-folder", s.withRequestLogging(s.handleGrantFolder))
	mux.HandleFunc("DELETE /api/export-folder", s.withRequestLogging(s.handleRevokeFolder))
	mux.HandleFunc("GET /api/status", s.withRequestLogging(s.handleStatus))

	return s
}

func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLogging adds a request ID and request logging to handlers.
func (s *Server) withRequestLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		next(w, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
