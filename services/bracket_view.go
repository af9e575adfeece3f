package services

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/models"
	"github.com/Dosada05/tournament-bracket/repositories"
)

// BracketView держит текущее дерево одного турнира. Дерево заменяется только
// целиком, после полной перестройки из свежего снимка.
type BracketView struct {
	TournamentID string
	Controller   *WinnerController

	loader *SnapshotLoader
	hub    *brackets.Hub
	logger *slog.Logger

	mu         sync.RWMutex
	tree       *brackets.Tree
	snapshot   *models.Snapshot
	generation uint64
	lastErr    error
}

// Current returns the tree of the last load and the error it ended with.
// The tree is nil when the last load failed.
func (v *BracketView) Current() (*brackets.Tree, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree, v.lastErr
}

// Snapshot returns the snapshot the current tree was built from.
func (v *BracketView) Snapshot() *models.Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot
}

// EnsureLoaded returns the current tree, loading it when none is held.
// A failed load is retried on the next call.
func (v *BracketView) EnsureLoaded(ctx context.Context) (*brackets.Tree, error) {
	v.mu.RLock()
	tree := v.tree
	v.mu.RUnlock()
	if tree != nil {
		return tree, nil
	}
	return v.Reload(ctx)
}

// Reload fetches a fresh snapshot and replaces the tree. Concurrent reloads are
// not cancelled, the one that finishes last wins.
//
// The generation only advances when the snapshot differs from the one the
// current tree was built from, so a refresh of an unchanged bracket keeps
// pending selections valid and does not notify the room.
func (v *BracketView) Reload(ctx context.Context) (*brackets.Tree, error) {
	snap, tree, err := v.loader.Load(ctx, v.TournamentID)

	v.mu.Lock()
	changed := v.tree == nil || !reflect.DeepEqual(v.snapshot, snap)
	if err == nil && changed {
		v.generation++
	}
	gen := v.generation
	v.lastErr = err
	v.snapshot = snap
	if err != nil {
		v.tree = nil
	} else {
		tree.Generation = gen
		v.tree = tree
	}
	v.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if changed && v.hub != nil {
		v.hub.BroadcastToRoom(brackets.RoomForTournament(v.TournamentID), brackets.WebSocketMessage{
			Type: brackets.MessageBracketUpdated,
			Payload: brackets.BracketUpdatedPayload{
				TournamentID: v.TournamentID,
				Generation:   gen,
			},
		})
	}
	return tree, nil
}

// Preview builds a read-only replay of the bracket. The live tree is untouched.
func (v *BracketView) Preview(ctx context.Context, upToRound int) (*brackets.Tree, error) {
	return v.loader.Preview(ctx, v.TournamentID, upToRound)
}

// DefaultViewIdleTTL is how long an unused view is kept.
const DefaultViewIdleTTL = 10 * time.Minute

// ViewRegistry lazily creates one view per tournament. Views left unused for
// longer than IdleTTL are dropped by Cleanup.
type ViewRegistry struct {
	IdleTTL time.Duration

	loader     *SnapshotLoader
	repo       repositories.BracketRepository
	tickets    *TicketIssuer
	celebrator Celebrator
	hub        *brackets.Hub
	logger     *slog.Logger

	mu    sync.Mutex
	views map[string]*registeredView
}

type registeredView struct {
	view     *BracketView
	lastUsed time.Time
}

func NewViewRegistry(
	loader *SnapshotLoader,
	repo repositories.BracketRepository,
	tickets *TicketIssuer,
	celebrator Celebrator,
	hub *brackets.Hub,
	logger *slog.Logger,
) *ViewRegistry {
	return &ViewRegistry{
		IdleTTL:    DefaultViewIdleTTL,
		loader:     loader,
		repo:       repo,
		tickets:    tickets,
		celebrator: celebrator,
		hub:        hub,
		logger:     logger,
		views:      make(map[string]*registeredView),
	}
}

func (r *ViewRegistry) View(tournamentID string) *BracketView {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rv, ok := r.views[tournamentID]; ok {
		rv.lastUsed = time.Now()
		return rv.view
	}

	logger := r.logger.With(slog.String("tournament_id", tournamentID))
	v := &BracketView{
		TournamentID: tournamentID,
		loader:       r.loader,
		hub:          r.hub,
		logger:       logger,
	}
	v.Controller = NewWinnerController(v, r.repo, r.tickets, r.celebrator, logger)
	r.views[tournamentID] = &registeredView{view: v, lastUsed: time.Now()}
	return v
}

// Len returns the number of registered views.
func (r *ViewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Cleanup periodically drops idle views until ctx is done.
func (r *ViewRegistry) Cleanup(ctx context.Context) error {
	ticker := time.NewTicker(r.IdleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			r.evict(now)
		}
	}
}

// evict drops views idle for longer than IdleTTL. A view whose controller is
// submitting, or holds a selection that has not expired yet, is kept.
func (r *ViewRegistry) evict(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rv := range r.views {
		if now.Sub(rv.lastUsed) <= r.IdleTTL {
			continue
		}
		if !rv.view.Controller.idleAt(now) {
			continue
		}
		delete(r.views, id)
		r.logger.Debug("evicted idle bracket view", slog.String("tournament_id", id))
	}
}
