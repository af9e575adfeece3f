package brackets

import "github.com/Dosada05/tournament-bracket/models"

const (
	labelTBD         = "TBD"
	labelUnavailable = "Bye/Unavailable"
)

// renderSlot builds one player slot. The players map is only read.
func (b *Builder) renderSlot(playerID *int, players map[int]*models.Player, winnerID *int) *Slot {
	if playerID == nil {
		return &Slot{Kind: SlotEmpty, Label: labelTBD}
	}

	id := *playerID
	player, ok := players[id]
	if !ok || player == nil {
		// Players can be removed upstream after the bracket was generated.
		return &Slot{PlayerID: &id, Kind: SlotUnavailable, Label: labelUnavailable}
	}

	slot := &Slot{
		PlayerID: &id,
		Kind:     SlotSeated,
		Label:    player.DisplayName(),
		School:   player.School,
		Seeded:   player.IsSeeded,
		Color:    b.ctx.colorFor(player.School),
	}

	if winnerID != nil {
		if *winnerID == id {
			slot.Outcome = OutcomeWinner
		} else {
			slot.Outcome = OutcomeLoser
		}
	}
	return slot
}
