package models

// Snapshot - полный снимок сетки, полученный за одну загрузку.
// Каждый снимок независим: он целиком заменяет предыдущий, без слияния.
//
// Rounds и Players остаются nil, если поле отсутствует в ответе; это
// отличает неполные данные от пустой сетки.
type Snapshot struct {
	Rounds  map[string][]*Match `json:"rounds"`
	Players map[int]*Player     `json:"players"`

	// Error заполняется, когда внешний API вернул {"error": "..."} вместо сетки.
	Error string `json:"error,omitempty"`
}

// Player returns the player registered under id, or nil when the lookup fails.
func (s *Snapshot) Player(id int) *Player {
	if s == nil || s.Players == nil {
		return nil
	}
	return s.Players[id]
}
