package models

const unnamedPlayer = "Unnamed Player"

// Player представляет участника турнира. Ядро только читает игроков.
type Player struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	School       string `json:"school"`
	IsSeeded     bool   `json:"is_seeded"`
	TournamentID int    `json:"tournament_id,omitempty"`
}

// DisplayName returns the name shown in a bracket slot.
func (p *Player) DisplayName() string {
	if p == nil || p.Name == "" {
		return unnamedPlayer
	}
	return p.Name
}
