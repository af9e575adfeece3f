package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-bracket/models"
)

func eightPlayerSnapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Rounds: map[string][]*models.Match{
			"1": {
				{ID: 1, Player1ID: intp(1), Player2ID: intp(2), WinnerID: intp(1)},
				{ID: 2, Player1ID: intp(3), Player2ID: intp(4), WinnerID: intp(3)},
				{ID: 3, Player1ID: intp(5), Player2ID: intp(6), WinnerID: intp(6)},
				{ID: 4, Player1ID: intp(7), Player2ID: intp(8), WinnerID: intp(8)},
			},
			"2": {
				{ID: 5, Player1ID: intp(1), Player2ID: intp(3), WinnerID: intp(1)},
				{ID: 6, Player1ID: intp(6), Player2ID: intp(8), WinnerID: intp(8)},
			},
			"3": {
				{ID: 7, Player1ID: intp(1), Player2ID: intp(8), WinnerID: intp(8)},
			},
		},
		Players: map[int]*models.Player{},
	}
	for i := 1; i <= 8; i++ {
		snap.Players[i] = &models.Player{ID: i, Name: string(rune('A' + i - 1))}
	}
	return snap
}

func TestPreview_DropsLaterRounds(t *testing.T) {
	tree, err := newTestBuilder().Preview(eightPlayerSnapshot(), 2)
	require.NoError(t, err)

	require.Len(t, tree.Rounds, 2)
	assert.True(t, tree.ReadOnly)
	assert.Equal(t, 2, tree.TotalRounds)
	assert.Equal(t, "Final", tree.Rounds[1].Title)

	for _, col := range tree.Rounds {
		for _, card := range col.Matches {
			assert.Nil(t, card.Connector)
			for _, slot := range card.Slots {
				assert.False(t, slot.Trophy)
				assert.False(t, slot.Selectable)
			}
		}
	}
	assert.Empty(t, tree.Targets())
	assert.Equal(t, 0, tree.Trophies())

	// Winner markers survive.
	card, ok := tree.Match(5)
	require.True(t, ok)
	assert.Equal(t, OutcomeWinner, card.Slots[0].Outcome)
}

func TestPreview_ClampsRound(t *testing.T) {
	b := newTestBuilder()

	low, err := b.Preview(eightPlayerSnapshot(), -3)
	require.NoError(t, err)
	assert.Len(t, low.Rounds, 1)

	high, err := b.Preview(eightPlayerSnapshot(), 42)
	require.NoError(t, err)
	assert.Len(t, high.Rounds, 3)
	assert.Equal(t, 0, countTrophies(high))
}

func TestPreview_LiveBuildStillAwardsTrophy(t *testing.T) {
	tree, err := newTestBuilder().Build(eightPlayerSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Trophies())
	assert.Equal(t, "H", tree.Champion().Label)
}

func TestPreview_IncompleteSnapshot(t *testing.T) {
	_, err := newTestBuilder().Preview(&models.Snapshot{}, 1)
	assert.ErrorIs(t, err, ErrDataIncomplete)
}
