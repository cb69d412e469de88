package http

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"codewords/internal/app"
	"codewords/internal/config"
	"codewords/internal/transport/ws"
)

// apiTimeout bounds every /api handler. The websocket route is exempt.
const apiTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
	hub    *app.GameHub
	config *config.Config
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, hub *app.GameHub, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		hub:    hub,
		config: cfg,
		logger: logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(chimw.Recoverer)
	s.router.Use(s.middleware)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(apiTimeout))

		r.Post("/rooms", s.handleCreateRoom)
		r.Get("/rooms/{roomCode}", s.handleGetRoom)
		r.Get("/rooms/{roomCode}/exists", s.handleRoomExists)
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
	})

	wsHandler := ws.NewHandler(s.hub, ws.HandlerOptions{
		RateLimit:  s.config.Game.ClientRateLimit,
		RateBurst:  s.config.Game.ClientRateBurst,
		SameOrigin: s.config.IsProduction(),
	}, s.logger)
	s.router.Method(http.MethodGet, "/ws", wsHandler)
}

// middleware adds CORS headers and logs each request
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Add CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		level := slog.LevelInfo
		if !s.config.IsDevelopment() && r.URL.Path == "/api/health" {
			level = slog.LevelDebug
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"requestID", chimw.GetReqID(r.Context()),
		)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket support
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
