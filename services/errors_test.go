package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/repositories"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"incomplete", fmt.Errorf("tournament 7: %w", brackets.ErrDataIncomplete), MsgDataIncomplete},
		{"load transport", fmt.Errorf("%w: %w", ErrLoadFailed, &repositories.StatusError{StatusCode: 500, Message: "boom"}), MsgLoadFailed},
		{"load rejected", fmt.Errorf("%w: %w", ErrLoadFailed, &repositories.RejectedError{Reason: "Tournament not found"}), "Tournament not found"},
		{"update transport", fmt.Errorf("%w: %w", ErrUpdateFailed, &repositories.StatusError{StatusCode: 400, Message: "bad winner"}), MsgUpdateFailed},
		{"update rejected", fmt.Errorf("%w: %w", ErrUpdateFailed, &repositories.RejectedError{Reason: "Match is locked"}), "Match is locked"},
		{"update rejected without reason", fmt.Errorf("%w: %w", ErrUpdateFailed, &repositories.RejectedError{}), MsgUpdateRejected},
		{"stale", ErrStaleSelection, "Bracket changed since the selection was made, please select again"},
		{"not selectable", fmt.Errorf("%w: match 1", ErrSlotNotSelectable), "Slot cannot be selected as winner: match 1"},
		{"unknown", errors.New("boom"), MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestChampionshipMessage(t *testing.T) {
	assert.Equal(t, "Congratulations! Alice is the champion of the tournament!",
		ChampionshipDecided{WinnerName: "Alice"}.Message())
	assert.Equal(t, "Congratulations! Champion is the champion of the tournament!",
		ChampionshipDecided{}.Message())
}
