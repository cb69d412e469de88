package domain

import "strings"

// Start moves a ready lobby into the first hint phase (host only)
func (s *Session) Start(actorID string) error {
	if !s.IsHost(actorID) {
		return ErrNotHost
	}
	if !s.Phase.CanTransitionTo(PhasePlaying) {
		return ErrInvalidPhase
	}
	if !s.CanStart() {
		return ErrNotReady
	}

	s.Phase = PhasePlaying
	s.CurrentTeam = s.StartingTeam
	s.beginHintPhase()
	return nil
}

// SubmitHint records the current spymaster's clue and opens guessing.
// Agents get one bonus guess beyond count.
func (s *Session) SubmitHint(actorID, word string, count int) error {
	if s.Phase != PhasePlaying || s.TurnPhase != TurnHint {
		return ErrInvalidPhase
	}

	p, err := s.GetPlayer(actorID)
	if err != nil {
		return err
	}
	if p.Team != s.CurrentTeam || !p.IsSpymaster {
		return ErrNotSpymaster
	}

	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyHint
	}
	if count < 1 || count > BoardSize {
		return ErrInvalidHintCount
	}

	s.CurrentHint = &Hint{Word: word, Count: count}
	s.GuessesRemaining = count + 1
	s.TurnPhase = TurnGuessing
	s.armTimer()
	s.History = append(s.History, NewHintEntry(s.CurrentTeam, word, count))
	return nil
}

// Reveal resolves a field agent's guess on cell idx
func (s *Session) Reveal(actorID string, idx int) error {
	if err := s.checkAgentTurn(actorID); err != nil {
		return err
	}
	if idx < 0 || idx >= len(s.Board) {
		return ErrInvalidCell
	}

	cell := &s.Board[idx]
	if cell.Revealed {
		return ErrNoop
	}

	p, _ := s.GetPlayer(actorID)
	cell.Revealed = true
	cell.Highlighted = false
	s.History = append(s.History, NewGuessEntry(p.Name, cell.Word, cell.Type))

	if cell.Type == CellForbidden {
		s.finish(s.CurrentTeam.Opponent())
		return nil
	}

	if owner, ok := cell.Type.Team(); ok {
		s.Scores.Inc(owner)
		if s.Scores.Get(owner) >= s.TargetScores.Get(owner) {
			s.finish(owner)
			return nil
		}
	}

	if cell.Type != CellTypeFor(s.CurrentTeam) {
		s.endTurn(TurnEndManual)
		return nil
	}

	s.GuessesRemaining--
	if s.GuessesRemaining <= 0 {
		s.endTurn(TurnEndManual)
	}
	return nil
}

// ToggleHighlight flips the advisory marker on an unrevealed cell
func (s *Session) ToggleHighlight(actorID string, idx int) error {
	if err := s.checkAgentTurn(actorID); err != nil {
		return err
	}
	if idx < 0 || idx >= len(s.Board) {
		return ErrInvalidCell
	}

	cell := &s.Board[idx]
	if cell.Revealed {
		return ErrNoop
	}
	cell.Highlighted = !cell.Highlighted
	return nil
}

// EndTurn lets the current team give up the rest of its turn
func (s *Session) EndTurn(actorID string) error {
	if s.Phase != PhasePlaying {
		return ErrInvalidPhase
	}

	p, err := s.GetPlayer(actorID)
	if err != nil {
		return err
	}
	if p.Team != s.CurrentTeam {
		return ErrNotYourTurn
	}

	s.endTurn(TurnEndManual)
	return nil
}

// Tick advances the turn clock by one second. It is a no-op unless the
// current turn phase is timed. At zero the turn passes to the other team.
func (s *Session) Tick() error {
	if s.Phase != PhasePlaying || s.MaxTime == 0 || s.LobbySettings.SecondsFor(s.TurnPhase) == 0 {
		return ErrNoop
	}

	if s.Timer > 0 {
		s.Timer--
		return nil
	}

	s.endTurn(TurnEndTimeout)
	return nil
}

// Restart re-seeds a finished session with a new board and returns it to
// the lobby. Room code, players, host and settings are kept.
func (s *Session) Restart(actorID string, board Board) error {
	if !s.IsHost(actorID) {
		return ErrNotHost
	}
	if !s.Phase.CanTransitionTo(PhaseLobby) {
		return ErrInvalidPhase
	}

	s.Phase = PhaseLobby
	s.TurnPhase = TurnHint
	s.Board = board.Cells
	s.StartingTeam = board.StartingTeam
	s.CurrentTeam = board.StartingTeam
	s.Scores = Scores{}
	s.TargetScores = board.TargetScores()
	s.Timer = 0
	s.MaxTime = 0
	s.CurrentHint = nil
	s.GuessesRemaining = 0
	s.Winner = ""
	s.History = make([]HistoryEntry, 0)
	return nil
}

// checkAgentTurn verifies actorID is a field agent of the guessing team
func (s *Session) checkAgentTurn(actorID string) error {
	if s.Phase != PhasePlaying || s.TurnPhase != TurnGuessing {
		return ErrInvalidPhase
	}

	p, err := s.GetPlayer(actorID)
	if err != nil {
		return err
	}
	if p.Team != s.CurrentTeam {
		return ErrNotYourTurn
	}
	if !p.IsAgent() {
		return ErrIsSpymaster
	}
	return nil
}

// endTurn hands the turn to the other team's spymaster
func (s *Session) endTurn(reason TurnEndReason) {
	s.History = append(s.History, NewTurnEndEntry(s.CurrentTeam, reason))
	s.CurrentTeam = s.CurrentTeam.Opponent()
	for i := range s.Board {
		s.Board[i].Highlighted = false
	}
	s.beginHintPhase()
}

func (s *Session) beginHintPhase() {
	s.TurnPhase = TurnHint
	s.CurrentHint = nil
	s.GuessesRemaining = 0
	s.armTimer()
}

// armTimer resets the clock to the configured length of the current turn phase
func (s *Session) armTimer() {
	s.MaxTime = s.LobbySettings.SecondsFor(s.TurnPhase)
	s.Timer = s.MaxTime
}

func (s *Session) finish(winner Team) {
	s.Phase = PhaseFinished
	s.Winner = winner
	s.CurrentHint = nil
	s.GuessesRemaining = 0
	s.Timer = 0
	s.MaxTime = 0
	for i := range s.Board {
		s.Board[i].Highlighted = false
	}
}
