package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shiraji/assistant/internal/chat"
	"github.com/shiraji/assistant/internal/conversation"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Gateway     *chat.Gateway       // Required
	Store       *conversation.Store // Required
	Prober      Prober              // Optional: nil reports ollama_status "unknown"
	CORSOrigins []string            // Allowed origins for CORS
	TrustProxy  bool                // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	RateBurst   int                 // Rate limiter burst size per IP (0 = default 60)
}

// Server is the assistant's HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the server with all routes and middleware configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("chat gateway is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("conversation store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{gateway: cfg.Gateway, logger: logger}
	cv := &conversationHandler{store: cfg.Store, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", ch.send)
	mux.HandleFunc("GET /chat/stream", ch.stream)
	mux.HandleFunc("GET /conversations/{id}", cv.get)
	mux.HandleFunc("DELETE /conversations/{id}", cv.clear)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes. CORS must be before RateLimit so preflight OPTIONS gets
	// proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		handler.ServeHTTP(w, r)
	})

	// Health probes bypass the middleware stack so monitoring traffic never
	// competes with clients for rate-limit tokens.
	hh := &healthHandler{store: cfg.Store, prober: cfg.Prober, logger: logger}
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", hh.check)
	topMux.Handle("/", final)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
