package brackets

import (
	"fmt"

	"github.com/Dosada05/tournament-bracket/models"
)

// Preview builds a read-only tree that replays the bracket up to a round.
// Later rounds are dropped, so the last round shown carries the Final title.
// Out of range rounds are clamped to the snapshot.
func (b *Builder) Preview(snap *models.Snapshot, upToRound int) (*Tree, error) {
	if snap == nil || snap.Rounds == nil || snap.Players == nil {
		return nil, fmt.Errorf("%w: missing rounds or players", ErrDataIncomplete)
	}
	keys, err := sortedRounds(snap.Rounds)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return b.build(snap, true)
	}

	last := keys[len(keys)-1].number
	if upToRound < 1 {
		upToRound = 1
	}
	if upToRound > last {
		upToRound = last
	}

	partial := &models.Snapshot{
		Rounds:  make(map[string][]*models.Match, len(keys)),
		Players: snap.Players,
	}
	for _, rk := range keys {
		if rk.number <= upToRound {
			partial.Rounds[rk.key] = snap.Rounds[rk.key]
		}
	}
	if len(partial.Rounds) == 0 {
		// Round 1 may be missing from malformed data; show the earliest round instead.
		first := keys[0]
		partial.Rounds[first.key] = snap.Rounds[first.key]
	}
	return b.build(partial, true)
}
