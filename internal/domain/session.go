package domain

import (
	"strings"
	"time"
)

// DefaultMaxPlayers caps the number of seats in a room
const DefaultMaxPlayers = 20

// Hint is the spymaster's clue for the current turn
type Hint struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Session is the root aggregate for one room. Version is owned by the
// store: a write is accepted only if it carries the version it was read at.
type Session struct {
	RoomCode         string         `json:"roomCode"`
	Version          uint64         `json:"version"`
	Phase            Phase          `json:"phase"`
	TurnPhase        TurnPhase      `json:"turnPhase"`
	Board            []Cell         `json:"board"`
	StartingTeam     Team           `json:"startingTeam"`
	CurrentTeam      Team           `json:"currentTeam"`
	Scores           Scores         `json:"scores"`
	TargetScores     Scores         `json:"targetScores"`
	Timer            int            `json:"timer"`
	MaxTime          int            `json:"maxTime"`
	Players          []*Player      `json:"players"`
	HostID           string         `json:"hostId"`
	CurrentHint      *Hint          `json:"currentHint"`
	GuessesRemaining int            `json:"guessesRemaining"`
	Winner           Team           `json:"winner,omitempty"`
	LobbySettings    LobbySettings  `json:"lobbySettings"`
	History          []HistoryEntry `json:"history"`
	MaxPlayers       int            `json:"maxPlayers"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// NewSession creates a lobby-phase session around a generated board
func NewSession(roomCode string, board Board) *Session {
	return &Session{
		RoomCode:      roomCode,
		Phase:         PhaseLobby,
		TurnPhase:     TurnHint,
		Board:         board.Cells,
		StartingTeam:  board.StartingTeam,
		CurrentTeam:   board.StartingTeam,
		TargetScores:  board.TargetScores(),
		Players:       make([]*Player, 0),
		LobbySettings: DefaultLobbySettings(),
		History:       make([]HistoryEntry, 0),
		MaxPlayers:    DefaultMaxPlayers,
		CreatedAt:     time.Now(),
	}
}

// Clone returns a deep copy that can be transitioned without touching s
func (s *Session) Clone() *Session {
	c := *s

	c.Board = make([]Cell, len(s.Board))
	copy(c.Board, s.Board)

	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		c.Players[i] = &cp
	}

	if s.CurrentHint != nil {
		h := *s.CurrentHint
		c.CurrentHint = &h
	}

	c.History = make([]HistoryEntry, len(s.History))
	copy(c.History, s.History)

	return &c
}

// GetPlayer returns a player by ID
func (s *Session) GetPlayer(playerID string) (*Player, error) {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, ErrPlayerNotFound
}

// IsHost checks if the given player is the host
func (s *Session) IsHost(playerID string) bool {
	return playerID != "" && s.HostID == playerID
}

// TeamMembers returns the players on a team, in join order
func (s *Session) TeamMembers(t Team) []*Player {
	members := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Team == t {
			members = append(members, p)
		}
	}
	return members
}

// Spymaster returns the spymaster of a team, or nil
func (s *Session) Spymaster(t Team) *Player {
	for _, p := range s.Players {
		if p.Team == t && p.IsSpymaster {
			return p
		}
	}
	return nil
}

// ConnectedCount returns the number of connected players
func (s *Session) ConnectedCount() int {
	count := 0
	for _, p := range s.Players {
		if p.IsConnected() {
			count++
		}
	}
	return count
}

// CanStart reports whether both teams have exactly one spymaster and at
// least one field agent
func (s *Session) CanStart() bool {
	return s.Phase == PhaseLobby && s.teamReady(TeamA) && s.teamReady(TeamB)
}

func (s *Session) teamReady(t Team) bool {
	spymasters, agents := 0, 0
	for _, p := range s.TeamMembers(t) {
		if p.IsSpymaster {
			spymasters++
		} else {
			agents++
		}
	}
	return spymasters == 1 && agents >= 1
}

// AddPlayer seats a new player in the lobby. The first player becomes the
// host; later players go to the smaller team. Adding a player who is
// already seated reconnects them instead.
func (s *Session) AddPlayer(playerID, name string) (*Player, error) {
	if p, err := s.GetPlayer(playerID); err == nil {
		p.Reconnect()
		return p, nil
	}

	if s.Phase != PhaseLobby {
		return nil, ErrInvalidPhase
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if len(s.Players) >= s.MaxPlayers {
		return nil, ErrGameFull
	}

	team := TeamA
	if len(s.TeamMembers(TeamB)) < len(s.TeamMembers(TeamA)) {
		team = TeamB
	}

	player := NewPlayer(playerID, name, team)
	s.Players = append(s.Players, player)

	if s.HostID == "" {
		s.setHost(playerID)
	}

	return player, nil
}

// RemovePlayer removes a player from the session. If the host leaves, the
// earliest remaining player becomes host. Seats are fixed while a game is
// being played.
func (s *Session) RemovePlayer(playerID string) error {
	if s.Phase == PhasePlaying {
		return ErrInvalidPhase
	}

	idx := -1
	for i, p := range s.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPlayerNotFound
	}

	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)

	if s.HostID == playerID {
		s.HostID = ""
		if len(s.Players) > 0 {
			s.setHost(s.Players[0].ID)
		}
	}

	return nil
}

func (s *Session) setHost(playerID string) {
	s.HostID = playerID
	for _, p := range s.Players {
		p.IsHost = p.ID == playerID
	}
}

// SetConnected updates a seated player's connection status
func (s *Session) SetConnected(playerID string, connected bool) error {
	p, err := s.GetPlayer(playerID)
	if err != nil {
		return err
	}
	if p.IsConnected() == connected {
		return ErrNoop
	}
	if connected {
		p.Reconnect()
	} else {
		p.Disconnect()
	}
	return nil
}

// SwitchTeam moves a player to another team. Players may move themselves;
// the host may move anyone. Moving clears the spymaster flag.
func (s *Session) SwitchTeam(actorID, targetID string, team Team) error {
	if s.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	if !team.Valid() {
		return ErrInvalidTeam
	}
	if actorID != targetID && !s.IsHost(actorID) {
		return ErrNotHost
	}

	p, err := s.GetPlayer(targetID)
	if err != nil {
		return err
	}
	if p.Team == team {
		return ErrNoop
	}

	p.Team = team
	p.IsSpymaster = false
	return nil
}

// ToggleSpymaster flips a player's spymaster flag. Promoting a player
// demotes the team's previous spymaster.
func (s *Session) ToggleSpymaster(actorID, targetID string) error {
	if s.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	if actorID != targetID && !s.IsHost(actorID) {
		return ErrNotHost
	}

	p, err := s.GetPlayer(targetID)
	if err != nil {
		return err
	}

	if p.IsSpymaster {
		p.IsSpymaster = false
		return nil
	}

	if prev := s.Spymaster(p.Team); prev != nil {
		prev.IsSpymaster = false
	}
	p.IsSpymaster = true
	return nil
}

// UpdateSettings applies a host-only mutation to the lobby settings
func (s *Session) UpdateSettings(actorID string, mutate func(*LobbySettings) error) error {
	if !s.IsHost(actorID) {
		return ErrNotHost
	}
	if s.Phase != PhaseLobby {
		return ErrInvalidPhase
	}

	next := s.LobbySettings
	if err := mutate(&next); err != nil {
		return err
	}
	if next == s.LobbySettings {
		return ErrNoop
	}
	s.LobbySettings = next
	return nil
}
