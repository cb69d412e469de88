package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codewords/internal/app"
	"codewords/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256

	// Time allowed for one intent to read and write the session
	intentTimeout = 5 * time.Second
)

// Client represents a WebSocket client connection
type Client struct {
	conn     *websocket.Conn
	session  *app.GameSession
	playerID string
	limiter  *rate.Limiter
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.GameSession, playerID string, limiter *rate.Limiter, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		playerID: playerID,
		limiter:  limiter,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger.With("roomCode", session.GetRoomCode(), "playerID", playerID),
	}
}

// GetPlayerID returns the player ID for this client
func (c *Client) GetPlayerID() string {
	return c.playerID
}

// SendState implements app.ClientConnection interface
func (c *Client) SendState(view *domain.Session) error {
	return c.Send(NewServerMessage(MsgState, view))
}

// Send queues a message for the write pump
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.UnregisterClient(c.playerID, c)
		if _, ok := c.session.GetClient(c.playerID); !ok {
			ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
			if err := c.session.Disconnect(ctx, c.playerID); err != nil {
				c.logger.Debug("failed to mark player disconnected", "error", err)
			}
			cancel()
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	if !c.limiter.Allow() {
		c.sendError(ErrCodeRateLimited, "Too many messages")
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
	defer cancel()

	switch msg.Type {
	case MsgJoinLobby:
		c.handleJoinLobby(ctx, msg.Payload)
	case MsgLeave:
		c.report(c.session.Leave(ctx, c.playerID))
	case MsgSwitchTeam:
		c.handleSwitchTeam(ctx, msg.Payload)
	case MsgToggleSpymaster:
		c.handleToggleSpymaster(ctx, msg.Payload)
	case MsgToggleTimeLimit:
		c.updateSettings(ctx, func(l *domain.LobbySettings) error {
			l.ToggleTimeLimit()
			return nil
		})
	case MsgToggleSpymasterTimer:
		c.updateSettings(ctx, func(l *domain.LobbySettings) error {
			l.ToggleSpymasterTimer()
			return nil
		})
	case MsgToggleNormalTimer:
		c.updateSettings(ctx, func(l *domain.LobbySettings) error {
			l.ToggleNormalTimer()
			return nil
		})
	case MsgSetSpymasterDuration:
		c.handleSetDuration(ctx, msg.Payload, (*domain.LobbySettings).SetSpymasterDuration)
	case MsgSetNormalDuration:
		c.handleSetDuration(ctx, msg.Payload, (*domain.LobbySettings).SetNormalDuration)
	case MsgStartGame:
		c.report(c.session.StartGame(ctx, c.playerID))
	case MsgSubmitHint:
		c.handleSubmitHint(ctx, msg.Payload)
	case MsgRevealCard:
		c.handleCell(ctx, msg.Payload, c.session.Reveal)
	case MsgToggleHighlight:
		c.handleCell(ctx, msg.Payload, c.session.ToggleHighlight)
	case MsgEndTurn:
		c.report(c.session.EndTurn(ctx, c.playerID))
	case MsgRestartGame:
		c.report(c.session.Restart(ctx, c.playerID))
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleJoinLobby handles a join_lobby message
func (c *Client) handleJoinLobby(ctx context.Context, raw json.RawMessage) {
	var payload JoinLobbyPayload
	if !c.decode(raw, &payload) {
		return
	}
	if payload.Name == "" {
		c.sendError(ErrCodeInvalidMessage, "Name is required")
		return
	}

	if _, err := c.session.Join(ctx, c.playerID, payload.Name); err != nil {
		c.report(err)
		return
	}
	c.logger.Info("player joined")
}

// handleSwitchTeam handles a switch_team message
func (c *Client) handleSwitchTeam(ctx context.Context, raw json.RawMessage) {
	var payload SwitchTeamPayload
	if !c.decode(raw, &payload) {
		return
	}
	c.report(c.session.SwitchTeam(ctx, c.playerID, c.target(payload.PlayerID), payload.Team))
}

// handleToggleSpymaster handles a toggle_spymaster message
func (c *Client) handleToggleSpymaster(ctx context.Context, raw json.RawMessage) {
	var payload TargetPayload
	if !c.decode(raw, &payload) {
		return
	}
	c.report(c.session.ToggleSpymaster(ctx, c.playerID, c.target(payload.PlayerID)))
}

// handleSetDuration handles set_spymaster_duration and set_normal_duration
func (c *Client) handleSetDuration(ctx context.Context, raw json.RawMessage, set func(*domain.LobbySettings, int) error) {
	var payload DurationPayload
	if !c.decode(raw, &payload) {
		return
	}
	c.updateSettings(ctx, func(l *domain.LobbySettings) error {
		return set(l, payload.Seconds)
	})
}

// updateSettings applies a lobby settings change. Attempts by anyone but
// the host are dropped without a reply.
func (c *Client) updateSettings(ctx context.Context, mutate func(*domain.LobbySettings) error) {
	err := c.session.UpdateSettings(ctx, c.playerID, mutate)
	if errors.Is(err, domain.ErrNotHost) {
		c.logger.Debug("ignored settings change from non-host")
		return
	}
	c.report(err)
}

// handleSubmitHint handles a submit_hint message
func (c *Client) handleSubmitHint(ctx context.Context, raw json.RawMessage) {
	var payload SubmitHintPayload
	if !c.decode(raw, &payload) {
		return
	}
	c.report(c.session.SubmitHint(ctx, c.playerID, payload.Word, payload.Count))
}

// handleCell handles reveal_card and toggle_highlight
func (c *Client) handleCell(ctx context.Context, raw json.RawMessage, act func(context.Context, string, int) error) {
	var payload CellPayload
	if !c.decode(raw, &payload) {
		return
	}
	if payload.Index == nil {
		c.sendError(ErrCodeInvalidMessage, "Cell index is required")
		return
	}
	c.report(act(ctx, c.playerID, *payload.Index))
}

// target resolves an optional player id to the sender
func (c *Client) target(playerID string) string {
	if playerID == "" {
		return c.playerID
	}
	return playerID
}

// decode unmarshals a payload, replying with an error if it is malformed
func (c *Client) decode(raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return false
	}
	return true
}

// report sends err, if any, to this client only
func (c *Client) report(err error) {
	if err == nil {
		return
	}
	code, message := errorCode(err)
	if code == ErrCodeInternalError {
		c.logger.Error("intent failed", "error", err)
	}
	c.sendError(code, message)
}

// errorCode maps an intent error to a wire code and message
func errorCode(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrNotHost):
		return ErrCodeNotHost, "Only the host can do that"
	case errors.Is(err, domain.ErrNotYourTurn):
		return ErrCodeNotYourTurn, "It's not your team's turn"
	case errors.Is(err, domain.ErrNotSpymaster):
		return ErrCodeNotSpymaster, "Only the current spymaster can give a hint"
	case errors.Is(err, domain.ErrIsSpymaster):
		return ErrCodeIsSpymaster, "Spymasters cannot pick cards"
	case errors.Is(err, domain.ErrNotReady):
		return ErrCodeNotReady, "Each team needs one spymaster and at least one agent"
	case errors.Is(err, domain.ErrGameFull):
		return ErrCodeGameFull, "Game is full"
	case errors.Is(err, domain.ErrGameNotFound):
		return ErrCodeGameNotFound, "Game not found"
	case errors.Is(err, app.ErrConflict):
		return ErrCodeConflict, "The game changed, please try again"
	case errors.Is(err, domain.ErrInvalidPhase),
		errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrEmptyHint),
		errors.Is(err, domain.ErrInvalidHintCount),
		errors.Is(err, domain.ErrInvalidCell),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidTeam),
		errors.Is(err, domain.ErrEmptyName):
		return ErrCodeInvalidAction, err.Error()
	default:
		return ErrCodeInternalError, "Something went wrong"
	}
}

// sendConnected sends the connected message with the client's current view
func (c *Client) sendConnected(ctx context.Context) error {
	view, err := c.session.View(ctx, c.playerID)
	if err != nil {
		return err
	}

	payload := &ConnectedPayload{
		PlayerID: c.playerID,
		RoomCode: c.session.GetRoomCode(),
		State:    view,
	}

	return c.Send(NewServerMessage(MsgConnected, payload))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	c.Send(NewServerMessage(MsgError, payload))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, nil))
}
