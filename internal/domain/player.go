package domain

import "time"

// ConnectionStatus represents a player's connection state
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "CONNECTED"
	StatusDisconnected ConnectionStatus = "DISCONNECTED"
)

// Player represents a participant in a session
type Player struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Team        Team             `json:"team"`
	IsSpymaster bool             `json:"isSpymaster"`
	IsHost      bool             `json:"isHost"`
	Status      ConnectionStatus `json:"status"`
	JoinedAt    time.Time        `json:"joinedAt"`
}

// NewPlayer creates a new connected player on the given team
func NewPlayer(id, name string, team Team) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Team:     team,
		Status:   StatusConnected,
		JoinedAt: time.Now(),
	}
}

// IsConnected returns true if the player is currently connected
func (p *Player) IsConnected() bool {
	return p.Status == StatusConnected
}

// IsAgent returns true if the player is a field agent (not the spymaster)
func (p *Player) IsAgent() bool {
	return !p.IsSpymaster
}

// Disconnect marks the player as disconnected
func (p *Player) Disconnect() {
	p.Status = StatusDisconnected
}

// Reconnect marks the player as connected
func (p *Player) Reconnect() {
	p.Status = StatusConnected
}
