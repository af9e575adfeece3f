package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/repositories"
)

func TestWinnerController_NonFinalReloadsWithoutCelebration(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	before := env.load(t)
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 2})
	require.NoError(t, err)
	assert.Equal(t, StatePendingConfirmation, ctrl.State())
	assert.Equal(t, "Bob", pending.PlayerName)
	assert.Equal(t, MsgConfirmSelection, pending.Prompt)
	assert.NotEmpty(t, pending.ID)

	outcome, err := ctrl.Confirm(context.Background(), pending.Ticket)
	require.NoError(t, err)

	assert.Equal(t, []update{{matchID: 1, winnerID: 2}}, env.repo.updates)
	assert.Equal(t, 2, env.repo.fetchCount())
	assert.False(t, outcome.Championship)
	assert.Empty(t, outcome.Message)
	assert.Empty(t, env.celebrator.Events())
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Nil(t, ctrl.Pending())

	require.NotNil(t, outcome.Tree)
	assert.Greater(t, outcome.Tree.Generation, before.Generation)
	card, ok := outcome.Tree.Match(1)
	require.True(t, ok)
	assert.Equal(t, brackets.OutcomeWinner, card.Slots[1].Outcome)
	assert.False(t, card.Slots[1].Selectable)

	current, err := env.view.Current()
	require.NoError(t, err)
	assert.Same(t, outcome.Tree, current)
}

func TestWinnerController_FinalEmitsChampionship(t *testing.T) {
	env := newTestEnv(t, finalSnapshot(), nil)
	env.load(t)
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 3, PlayerID: 4})
	require.NoError(t, err)

	outcome, err := ctrl.Confirm(context.Background(), pending.Ticket)
	require.NoError(t, err)

	assert.True(t, outcome.Championship)
	assert.Equal(t, "Dave", outcome.WinnerName)
	assert.Equal(t, "Congratulations! Dave is the champion of the tournament!", outcome.Message)

	events := env.celebrator.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "7", events[0].TournamentID)
	assert.Equal(t, 3, events[0].MatchID)
	assert.Equal(t, 4, events[0].WinnerID)
	assert.Equal(t, "Dave", events[0].WinnerName)
	assert.Same(t, outcome.Tree, events[0].Tree)

	// The rebuilt tree carries exactly one trophy on the champion.
	require.NotNil(t, outcome.Tree)
	assert.Equal(t, 1, outcome.Tree.Trophies())
	assert.Equal(t, "Dave", outcome.Tree.Champion().Label)
}

func TestWinnerController_UnavailableFinalistDoesNotCelebrate(t *testing.T) {
	snap := finalSnapshot()
	delete(snap.Players, 4)
	env := newTestEnv(t, snap, nil)
	env.load(t)
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 3, PlayerID: 4})
	require.NoError(t, err)
	assert.Equal(t, "Bye/Unavailable", pending.PlayerName)

	outcome, err := ctrl.Confirm(context.Background(), pending.Ticket)
	require.NoError(t, err)

	assert.False(t, outcome.Championship)
	assert.Empty(t, env.celebrator.Events())
	assert.Equal(t, []update{{matchID: 3, winnerID: 4}}, env.repo.updates)
}

func TestWinnerController_CelebrationFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t, finalSnapshot(), nil)
	env.celebrator.err = errors.New("sink down")
	env.load(t)
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 3, PlayerID: 1})
	require.NoError(t, err)

	outcome, err := ctrl.Confirm(context.Background(), pending.Ticket)
	require.NoError(t, err)
	assert.True(t, outcome.Championship)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestWinnerController_TransportFailureLeavesTreeUntouched(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	before := env.load(t)
	env.repo.updateErr = &repositories.StatusError{StatusCode: 500, Message: "db down"}
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 1})
	require.NoError(t, err)

	outcome, err := ctrl.Confirm(context.Background(), pending.Ticket)
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, ErrUpdateFailed)
	assert.ErrorIs(t, err, ErrTransportFailure)
	assert.Equal(t, MsgUpdateFailed, UserMessage(err))

	assert.Equal(t, StateIdle, ctrl.State())
	assert.Equal(t, 1, env.repo.fetchCount(), "no reload after a failed update")
	current, _ := env.view.Current()
	assert.Same(t, before, current)
	assert.Empty(t, env.celebrator.Events())
}

func TestWinnerController_RejectionShowsServerReason(t *testing.T) {
	env := newTestEnv(t, finalSnapshot(), nil)
	env.load(t)
	env.repo.updateErr = &repositories.RejectedError{Reason: "Match is locked"}
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 3, PlayerID: 1})
	require.NoError(t, err)

	_, err = ctrl.Confirm(context.Background(), pending.Ticket)
	require.ErrorIs(t, err, ErrApplicationRejection)
	assert.Equal(t, "Match is locked", UserMessage(err))
	assert.Empty(t, env.celebrator.Events())
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestWinnerController_RejectionWithoutReason(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	env.load(t)
	env.repo.updateErr = &repositories.RejectedError{}
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 1})
	require.NoError(t, err)

	_, err = ctrl.Confirm(context.Background(), pending.Ticket)
	assert.Equal(t, MsgUpdateRejected, UserMessage(err))
}

func TestWinnerController_SelectRules(t *testing.T) {
	env := newTestEnv(t, finalSnapshot(), nil)
	ctrl := env.view.Controller

	_, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 2})
	assert.ErrorIs(t, err, ErrNoBracketLoaded)

	env.load(t)

	// Alice already won match 1.
	_, err = ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 1})
	assert.ErrorIs(t, err, ErrSlotNotSelectable)

	_, err = ctrl.Select(brackets.Target{MatchID: 42, PlayerID: 1})
	assert.ErrorIs(t, err, ErrSlotNotSelectable)

	_, err = ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 2})
	assert.NoError(t, err)
}

func TestWinnerController_Decline(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	env.load(t)
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 2, PlayerID: 3})
	require.NoError(t, err)

	require.NoError(t, ctrl.Decline())
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Nil(t, ctrl.Pending())

	_, err = ctrl.Confirm(context.Background(), pending.Ticket)
	assert.ErrorIs(t, err, ErrNoPendingSelection)
	assert.Empty(t, env.repo.updates)
}

func TestWinnerController_StaleAfterReload(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	env.load(t)
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 1})
	require.NoError(t, err)

	env.repo.setWinner(2, 4)
	env.load(t)

	_, err = ctrl.Confirm(context.Background(), pending.Ticket)
	assert.ErrorIs(t, err, ErrStaleSelection)
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Empty(t, env.repo.updates)
}

func TestWinnerController_RefreshOfUnchangedBracketKeepsSelection(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	env.load(t)
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 1})
	require.NoError(t, err)

	env.load(t)

	_, err = ctrl.Confirm(context.Background(), pending.Ticket)
	require.NoError(t, err)
	assert.Equal(t, []update{{matchID: 1, winnerID: 1}}, env.repo.updates)
}

func TestWinnerController_NewerSelectionReplacesPending(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	env.load(t)
	ctrl := env.view.Controller

	first, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 1})
	require.NoError(t, err)
	second, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 2})
	require.NoError(t, err)

	_, err = ctrl.Confirm(context.Background(), first.Ticket)
	assert.ErrorIs(t, err, ErrStaleSelection)
	assert.Equal(t, StatePendingConfirmation, ctrl.State())

	_, err = ctrl.Confirm(context.Background(), second.Ticket)
	require.NoError(t, err)
	assert.Equal(t, []update{{matchID: 1, winnerID: 2}}, env.repo.updates)
}

func TestWinnerController_InvalidTicket(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	env.load(t)
	ctrl := env.view.Controller

	_, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 1})
	require.NoError(t, err)

	_, err = ctrl.Confirm(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidTicket)
	assert.Equal(t, StatePendingConfirmation, ctrl.State())
}

func TestWinnerController_SecondSubmitRejectedWhileInFlight(t *testing.T) {
	env := newTestEnv(t, semisSnapshot(), nil)
	env.load(t)
	env.repo.block = make(chan struct{})
	env.repo.entered = make(chan struct{})
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 1, PlayerID: 1})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Confirm(context.Background(), pending.Ticket)
		done <- err
	}()

	select {
	case <-env.repo.entered:
	case <-time.After(time.Second):
		t.Fatal("update was not submitted")
	}
	assert.Equal(t, StateSubmitting, ctrl.State())

	_, err = ctrl.Confirm(context.Background(), pending.Ticket)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	_, err = ctrl.Select(brackets.Target{MatchID: 2, PlayerID: 3})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.ErrorIs(t, ctrl.Decline(), ErrSubmissionInFlight)

	close(env.repo.block)
	require.NoError(t, <-done)
	assert.Len(t, env.repo.updates, 1)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestWinnerController_ReloadFailureAfterUpdate(t *testing.T) {
	env := newTestEnv(t, finalSnapshot(), nil)
	env.load(t)
	ctrl := env.view.Controller

	pending, err := ctrl.Select(brackets.Target{MatchID: 3, PlayerID: 1})
	require.NoError(t, err)

	env.repo.mu.Lock()
	env.repo.fetchErr = &repositories.StatusError{StatusCode: 503}
	env.repo.mu.Unlock()

	outcome, err := ctrl.Confirm(context.Background(), pending.Ticket)
	require.NoError(t, err)
	require.Error(t, outcome.ReloadErr)
	assert.Nil(t, outcome.Tree)
	assert.Equal(t, MsgLoadFailed, UserMessage(outcome.ReloadErr))

	// The update went through, so the championship is still announced.
	assert.True(t, outcome.Championship)
	assert.Equal(t, "Alice", outcome.WinnerName)
	require.Len(t, env.celebrator.Events(), 1)
	assert.Nil(t, env.celebrator.Events()[0].Tree)

	current, _ := env.view.Current()
	assert.Nil(t, current)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending_confirmation", StatePendingConfirmation.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "success", StateSuccess.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
