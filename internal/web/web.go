package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"blockcal/internal/config"
	appLog "blockcal/internal/log"
	"blockcal/internal/pipeline"
)

// Server exposes the merged blocked-dates calendar over HTTP in serve mode.
//
// It keeps the last successfully built document in memory and keeps serving
// it when a refresh fails; a broken feed degrades availability of updates,
// never of the calendar itself.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	docMu sync.RWMutex
	doc   *document
}

// document is the last successfully built calendar.
type document struct {
	body      string
	count     int
	updatedAt time.Time
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Refresh runs one merge cycle and, on success, replaces the served
// document. On failure the previous document stays in place.
func (s *Server) Refresh(ctx context.Context) (pipeline.Result, error) {
	res, err := pipeline.Run(ctx, s.cfg)
	if err != nil {
		return pipeline.Result{}, err
	}

	s.docMu.Lock()
	s.doc = &document{
		body:      res.Document,
		count:     res.Count,
		updatedAt: time.Now().UTC(),
	}
	s.docMu.Unlock()

	return res, nil
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays unauthenticated for probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="blockcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/calendar.ics", s.handleCalendar)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleCalendar serves the last successfully merged calendar. Until the
// first successful run there is nothing safe to serve, so it returns 503
// rather than an empty calendar a client might interpret as "no blocks".
func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	s.docMu.RLock()
	doc := s.doc
	s.docMu.RUnlock()

	if doc == nil {
		http.Error(w, "calendar not built yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="blocked.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.body))
}

type refreshResponse struct {
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, err := s.Refresh(r.Context())
	if err != nil {
		appLog.Error("manual refresh failed", err)
		http.Error(w, "refresh failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	s.docMu.RLock()
	updatedAt := s.doc.updatedAt
	s.docMu.RUnlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(refreshResponse{
		Count:     res.Count,
		UpdatedAt: updatedAt,
	})
}
