package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/syedsofiyan2004/rem/internal/assistant"
	"github.com/syedsofiyan2004/rem/internal/config"
	"github.com/syedsofiyan2004/rem/internal/observability"
	"github.com/syedsofiyan2004/rem/internal/reliability"
)

// Server exposes the assistant over HTTP. A nil service puts the server
// in degraded mode: health endpoints stay up, API routes return 503.
type Server struct {
	cfg      config.Config
	service  *assistant.Service
	metrics  *observability.Metrics
	log      zerolog.Logger
	version  string
	upgrader websocket.Upgrader
}

func New(cfg config.Config, service *assistant.Service, metrics *observability.Metrics, version string, log zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		service: service,
		metrics: metrics,
		log:     log.With().Str("component", "httpapi").Logger(),
		version: version,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up. Non-browser clients
				// often omit Origin; allow them.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/api/version", s.handleVersion)

	r.Post("/api/chat", s.guarded(s.handleChat))
	r.Post("/api/chat/stream", s.guarded(s.handleChatStream))
	r.Get("/api/chat/ws", s.guarded(s.handleChatWS))
	r.Post("/api/tts", s.guarded(s.handleTTS))
	r.Post("/api/sing", s.guarded(s.handleSing))
	r.Get("/api/voices", s.guarded(s.handleListVoices))

	return r
}

// guarded short-circuits API routes while the service is degraded.
func (s *Server) guarded(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.service == nil {
			respondError(w, http.StatusServiceUnavailable, "degraded", "the assistant is not available right now")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.service == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"name":    "rem",
		"version": s.version,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondClassified maps a failure class onto an HTTP status: the
// caller's fault is 400, backpressure is 429, upstream trouble is 502.
func respondClassified(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch reliability.ClassOf(err) {
	case reliability.ClassValidation:
		status = http.StatusBadRequest
	case reliability.ClassBusy:
		status = http.StatusTooManyRequests
	case reliability.ClassTransient, reliability.ClassFatal, reliability.ClassExhausted:
		status = http.StatusBadGateway
	}
	respondError(w, status, reliability.CodeOf(err), err.Error())
}
