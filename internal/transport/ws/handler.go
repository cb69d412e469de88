package ws

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codewords/internal/app"
	"codewords/internal/domain"
)

const (
	// DefaultRateLimit is the sustained number of messages a client may send per second
	DefaultRateLimit = 10

	// DefaultRateBurst is the number of messages a client may send at once
	DefaultRateBurst = 20
)

// HandlerOptions tunes per-client limits. With SameOrigin set, upgrades
// from other origins are refused.
type HandlerOptions struct {
	RateLimit  float64
	RateBurst  int
	SameOrigin bool
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.GameHub
	upgrader websocket.Upgrader
	opts     HandlerOptions
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.GameHub, opts HandlerOptions, logger *slog.Logger) *Handler {
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = DefaultRateBurst
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if !opts.SameOrigin {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}

	return &Handler{
		hub:      hub,
		upgrader: upgrader,
		opts:     opts,
		logger:   logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		http.Error(w, "roomCode is required", http.StatusBadRequest)
		return
	}

	// Get or create player ID
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = uuid.New().String()
	}

	session, err := h.hub.GetSession(r.Context(), roomCode)
	if errors.Is(err, domain.ErrGameNotFound) {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load game", "roomCode", roomCode, "error", err)
		http.Error(w, "Failed to load game", http.StatusInternalServerError)
		return
	}

	view, err := session.View(r.Context(), playerID)
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	_, seatErr := view.GetPlayer(playerID)
	seated := seatErr == nil

	// New players can only join a lobby
	if !seated && view.Phase != domain.PhaseLobby {
		http.Error(w, "Cannot join this game", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	limiter := rate.NewLimiter(rate.Limit(h.opts.RateLimit), h.opts.RateBurst)
	client := NewClient(conn, session, playerID, limiter, h.logger)
	session.RegisterClient(playerID, client)

	h.logger.Info("websocket connected",
		"roomCode", session.GetRoomCode(),
		"playerID", playerID,
		"isReconnect", seated,
	)

	if seated {
		if err := session.Connect(r.Context(), playerID); err != nil {
			h.logger.Debug("reconnect failed", "playerID", playerID, "error", err)
		}
	}
	if err := client.sendConnected(r.Context()); err != nil {
		h.logger.Debug("failed to send connected", "playerID", playerID, "error", err)
	}

	client.Run()
}
