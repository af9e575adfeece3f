package brackets

import (
	"log/slog"

	"github.com/Dosada05/tournament-bracket/models"
)

// trophyLedger is the build-local record of the single trophy a tree may carry.
type trophyLedger struct {
	awarded bool
}

// renderMatch composes the two slots of a match and decides the trophy.
//
// The trophy goes to the winner of the final only when both sides were filled,
// so a player who reached the final through a bye is never crowned by it.
func (b *Builder) renderMatch(m *models.Match, players map[int]*models.Player, round, totalRounds int, ledger *trophyLedger) *MatchCard {
	if m == nil || players == nil {
		b.logger.Warn("match or players missing, rendering placeholder", slog.Int("round", round))
		return &MatchCard{Round: round, Placeholder: true, Slots: []*Slot{}}
	}

	card := &MatchCard{
		MatchID:      m.ID,
		Round:        round,
		Championship: round == totalRounds,
		WinnerID:     m.WinnerID,
		Slots: []*Slot{
			b.renderSlot(m.Player1ID, players, m.WinnerID),
			b.renderSlot(m.Player2ID, players, m.WinnerID),
		},
	}

	if !card.Championship || m.WinnerID == nil {
		return card
	}
	if !m.UserDecided() {
		b.logger.Debug("auto-bye in final, no trophy", slog.Int("match_id", m.ID))
		return card
	}
	if ledger.awarded {
		b.logger.Warn("second decided final in snapshot, trophy already placed", slog.Int("match_id", m.ID))
		return card
	}

	for _, slot := range card.Slots {
		if slot.IsPlaceholder() || *slot.PlayerID != *m.WinnerID {
			continue
		}
		slot.Trophy = true
		ledger.awarded = true
		break
	}
	return card
}
