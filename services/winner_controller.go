package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/repositories"
)

type State int

const (
	StateIdle State = iota
	StatePendingConfirmation
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingConfirmation:
		return "pending_confirmation"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PendingSelection is what the operator is asked to confirm.
type PendingSelection struct {
	Selection
	Ticket     string `json:"ticket"`
	PlayerName string `json:"player_name"`
	Prompt     string `json:"prompt"`
}

// Outcome describes a confirmed winner update.
type Outcome struct {
	Selection    Selection      `json:"selection"`
	Tree         *brackets.Tree `json:"tree,omitempty"`
	Championship bool           `json:"championship"`
	WinnerName   string         `json:"winner_name,omitempty"`
	Message      string         `json:"message,omitempty"`
	// ReloadErr is set when the update went through but the reload after it failed.
	ReloadErr error `json:"-"`
}

// WinnerController проводит выбор победителя через подтверждение, отправку
// и перезагрузку сетки. Одновременно в полёте может быть только одна отправка.
type WinnerController struct {
	view       *BracketView
	repo       repositories.BracketRepository
	tickets    *TicketIssuer
	celebrator Celebrator
	logger     *slog.Logger

	mu      sync.Mutex
	state   State
	pending *PendingSelection
}

func NewWinnerController(view *BracketView, repo repositories.BracketRepository, tickets *TicketIssuer, celebrator Celebrator, logger *slog.Logger) *WinnerController {
	return &WinnerController{
		view:       view,
		repo:       repo,
		tickets:    tickets,
		celebrator: celebrator,
		logger:     logger,
	}
}

func (c *WinnerController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns the selection awaiting confirmation, if any.
func (c *WinnerController) Pending() *PendingSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

// idleAt reports whether nothing is in flight and no selection is still
// confirmable at now.
func (c *WinnerController) idleAt(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy() {
		return false
	}
	return c.pending == nil || !now.Before(c.pending.ExpiresAt)
}

func (c *WinnerController) busy() bool {
	return c.state == StateSubmitting || c.state == StateSuccess
}

// Select starts the confirmation of target as the winner of its match. Only
// targets bound on the current tree are accepted. A newer selection replaces
// a pending one.
func (c *WinnerController) Select(target brackets.Target) (*PendingSelection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy() {
		return nil, ErrSubmissionInFlight
	}

	tree, _ := c.view.Current()
	if tree == nil {
		return nil, ErrNoBracketLoaded
	}

	_, slot, ok := tree.Lookup(target)
	if !ok {
		return nil, fmt.Errorf("%w: match %d, player %d", ErrSlotNotSelectable, target.MatchID, target.PlayerID)
	}

	sel := Selection{
		TournamentID: c.view.TournamentID,
		MatchID:      target.MatchID,
		PlayerID:     target.PlayerID,
		Generation:   tree.Generation,
	}
	ticket, err := c.tickets.Issue(&sel)
	if err != nil {
		return nil, err
	}

	c.pending = &PendingSelection{
		Selection:  sel,
		Ticket:     ticket,
		PlayerName: slot.Label,
		Prompt:     MsgConfirmSelection,
	}
	c.state = StatePendingConfirmation

	c.logger.Info("winner selected, awaiting confirmation",
		slog.Int("match_id", sel.MatchID), slog.Int("player_id", sel.PlayerID))

	p := *c.pending
	return &p, nil
}

// Decline drops the pending selection. Nothing is sent upstream.
func (c *WinnerController) Decline() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy() {
		return ErrSubmissionInFlight
	}
	if c.pending != nil {
		c.logger.Info("winner selection declined", slog.Int("match_id", c.pending.MatchID))
	}
	c.reset()
	return nil
}

func (c *WinnerController) reset() {
	c.pending = nil
	c.state = StateIdle
}

// Confirm submits the pending selection identified by ticket, then reloads the
// bracket. On failure nothing local changes and the controller returns to idle.
func (c *WinnerController) Confirm(ctx context.Context, ticket string) (*Outcome, error) {
	c.mu.Lock()
	if c.busy() {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if c.pending == nil {
		c.mu.Unlock()
		return nil, ErrNoPendingSelection
	}

	sel, err := c.tickets.Parse(ticket)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if sel.ID != c.pending.ID || sel.TournamentID != c.view.TournamentID {
		c.mu.Unlock()
		return nil, ErrStaleSelection
	}

	tree, _ := c.view.Current()
	if tree == nil || tree.Generation != sel.Generation {
		c.reset()
		c.mu.Unlock()
		return nil, ErrStaleSelection
	}
	card, slot, ok := tree.Lookup(brackets.Target{MatchID: sel.MatchID, PlayerID: sel.PlayerID})
	if !ok {
		c.reset()
		c.mu.Unlock()
		return nil, ErrStaleSelection
	}

	// Решение о празднике принимается по дереву, на котором сделан выбор.
	championship := card.Championship && !slot.IsPlaceholder()
	winnerName := slot.Label

	c.pending = nil
	c.state = StateSubmitting
	c.mu.Unlock()

	log := c.logger.With(slog.Int("match_id", sel.MatchID), slog.Int("winner_id", sel.PlayerID))
	log.InfoContext(ctx, "submitting match winner")

	if err := c.repo.UpdateMatchWinner(ctx, sel.MatchID, sel.PlayerID); err != nil {
		c.mu.Lock()
		c.state = StateFailed
		log.ErrorContext(ctx, "match winner update failed", slog.Any("error", err))
		c.reset()
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: match %d: %w", ErrUpdateFailed, sel.MatchID, err)
	}

	c.mu.Lock()
	c.state = StateSuccess
	c.mu.Unlock()

	newTree, reloadErr := c.view.Reload(ctx)
	if reloadErr != nil {
		log.WarnContext(ctx, "reload after winner update failed", slog.Any("error", reloadErr))
	}

	outcome := &Outcome{
		Selection: *sel,
		Tree:      newTree,
		ReloadErr: reloadErr,
	}

	if championship {
		if snap := c.view.Snapshot(); snap != nil {
			if p := snap.Player(sel.PlayerID); p != nil {
				winnerName = p.DisplayName()
			}
		}
		event := ChampionshipDecided{
			TournamentID: c.view.TournamentID,
			MatchID:      sel.MatchID,
			WinnerID:     sel.PlayerID,
			WinnerName:   winnerName,
			Tree:         newTree,
		}
		outcome.Championship = true
		outcome.WinnerName = winnerName
		outcome.Message = event.Message()

		log.InfoContext(ctx, "championship decided", slog.String("winner", winnerName))
		if c.celebrator != nil {
			if err := c.celebrator.Celebrate(ctx, event); err != nil {
				log.ErrorContext(ctx, "championship celebration failed", slog.Any("error", err))
			}
		}
	}

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	return outcome, nil
}
