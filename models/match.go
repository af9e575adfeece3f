package models

// Match представляет матч сетки в том виде, в каком его отдаёт внешний API.
// Пустой слот (nil) означает bye или ещё не определённого участника.
type Match struct {
	ID          int  `json:"id"`
	RoundNumber int  `json:"round_number,omitempty"`
	MatchNumber int  `json:"match_number,omitempty"`
	Player1ID   *int `json:"player1_id"`
	Player2ID   *int `json:"player2_id"`
	WinnerID    *int `json:"winner_id"`
	NextMatchID *int `json:"next_match_id,omitempty"`
}

// HasEmptySlot reports whether either side of the match is unresolved.
func (m *Match) HasEmptySlot() bool {
	return m.Player1ID == nil || m.Player2ID == nil
}

// UserDecided reports whether the winner was recorded by an operator.
// A winner next to an empty slot is an automatic bye advance, not a decision.
func (m *Match) UserDecided() bool {
	return m.WinnerID != nil && !m.HasEmptySlot()
}

// AutoBye reports whether the winner was set only because the opponent slot is empty.
func (m *Match) AutoBye() bool {
	return m.WinnerID != nil && m.HasEmptySlot()
}

// IsWinner reports whether playerID is the recorded winner of the match.
func (m *Match) IsWinner(playerID int) bool {
	return m.WinnerID != nil && *m.WinnerID == playerID
}
