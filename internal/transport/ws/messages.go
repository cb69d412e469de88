package ws

import (
	"encoding/json"
	"time"

	"codewords/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoinLobby            MessageType = "join_lobby"
	MsgLeave                MessageType = "leave"
	MsgSwitchTeam           MessageType = "switch_team"
	MsgToggleSpymaster      MessageType = "toggle_spymaster"
	MsgToggleTimeLimit      MessageType = "toggle_time_limit"
	MsgToggleSpymasterTimer MessageType = "toggle_spymaster_timer"
	MsgToggleNormalTimer    MessageType = "toggle_normal_timer"
	MsgSetSpymasterDuration MessageType = "set_spymaster_duration"
	MsgSetNormalDuration    MessageType = "set_normal_duration"
	MsgStartGame            MessageType = "start_game"
	MsgSubmitHint           MessageType = "submit_hint"
	MsgRevealCard           MessageType = "reveal_card"
	MsgToggleHighlight      MessageType = "toggle_highlight"
	MsgEndTurn              MessageType = "end_turn"
	MsgRestartGame          MessageType = "restart_game"
	MsgPing                 MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected MessageType = "connected"
	MsgState     MessageType = "state"
	MsgError     MessageType = "error"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// JoinLobbyPayload is the payload for join_lobby message
type JoinLobbyPayload struct {
	Name string `json:"name"`
}

// SwitchTeamPayload is the payload for switch_team message. PlayerID
// defaults to the sender.
type SwitchTeamPayload struct {
	PlayerID string      `json:"playerId,omitempty"`
	Team     domain.Team `json:"team"`
}

// TargetPayload names the player a toggle_spymaster applies to. PlayerID
// defaults to the sender.
type TargetPayload struct {
	PlayerID string `json:"playerId,omitempty"`
}

// DurationPayload is the payload for set_*_duration messages
type DurationPayload struct {
	Seconds int `json:"seconds"`
}

// SubmitHintPayload is the payload for submit_hint message
type SubmitHintPayload struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CellPayload is the payload for reveal_card and toggle_highlight
type CellPayload struct {
	Index *int `json:"index"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	PlayerID string          `json:"playerId"`
	RoomCode string          `json:"roomCode"`
	State    *domain.Session `json:"state"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeGameNotFound   = "GAME_NOT_FOUND"
	ErrCodeGameFull       = "GAME_FULL"
	ErrCodeNotYourTurn    = "NOT_YOUR_TURN"
	ErrCodeInvalidAction  = "INVALID_ACTION"
	ErrCodeNotHost        = "NOT_HOST"
	ErrCodeNotSpymaster   = "NOT_SPYMASTER"
	ErrCodeIsSpymaster    = "IS_SPYMASTER"
	ErrCodeNotReady       = "NOT_READY"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
