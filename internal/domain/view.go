package domain

// ViewFor returns the snapshot a given participant is allowed to see.
// Unrevealed cell types are hidden from everyone but spymasters until the
// game is over.
func (s *Session) ViewFor(playerID string) *Session {
	v := s.Clone()
	if s.Phase == PhaseFinished {
		return v
	}

	if p, err := s.GetPlayer(playerID); err == nil && p.IsSpymaster {
		return v
	}

	for i := range v.Board {
		if !v.Board[i].Revealed {
			v.Board[i].Type = CellHidden
		}
	}
	return v
}
