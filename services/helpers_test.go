package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/models"
	"github.com/Dosada05/tournament-bracket/repositories"
	"github.com/Dosada05/tournament-bracket/storage"
)

func intp(i int) *int { return &i }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type update struct {
	matchID, winnerID int
}

// fakeRepo serves a snapshot from memory and applies accepted winners to it.
type fakeRepo struct {
	mu        sync.Mutex
	snap      *models.Snapshot
	fetchErr  error
	updateErr error
	fetches   int
	updates   []update
	// block, when set, holds UpdateMatchWinner until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeRepo) FetchSnapshot(_ context.Context, _ string) (*models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	raw, err := json.Marshal(f.snap)
	if err != nil {
		return nil, err
	}
	var out models.Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fakeRepo) UpdateMatchWinner(_ context.Context, matchID, winnerID int) error {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, update{matchID, winnerID})
	for _, matches := range f.snap.Rounds {
		for _, m := range matches {
			if m != nil && m.ID == matchID {
				m.WinnerID = intp(winnerID)
			}
		}
	}
	return nil
}

// setWinner records a winner upstream, outside of any controller.
func (f *fakeRepo) setWinner(matchID, winnerID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, matches := range f.snap.Rounds {
		for _, m := range matches {
			if m != nil && m.ID == matchID {
				m.WinnerID = intp(winnerID)
			}
		}
	}
}

func (f *fakeRepo) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeRepo) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

var _ repositories.BracketRepository = (*fakeRepo)(nil)

type recordingCelebrator struct {
	mu     sync.Mutex
	events []ChampionshipDecided
	err    error
}

func (r *recordingCelebrator) Celebrate(_ context.Context, e ChampionshipDecided) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingCelebrator) Events() []ChampionshipDecided {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ChampionshipDecided(nil), r.events...)
}

type fakeUploader struct {
	key         string
	contentType string
	body        bytes.Buffer
	err         error
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	u.key, u.contentType = key, contentType
	if _, err := io.Copy(&u.body, r); err != nil {
		return nil, err
	}
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(context.Context, string) error { return nil }

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

// semisSnapshot: two undecided semi-finals and a final waiting for both winners.
func semisSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Rounds: map[string][]*models.Match{
			"1": {
				{ID: 1, Player1ID: intp(1), Player2ID: intp(2)},
				{ID: 2, Player1ID: intp(3), Player2ID: intp(4)},
			},
			"2": {
				{ID: 3},
			},
		},
		Players: map[int]*models.Player{
			1: {ID: 1, Name: "Alice", School: "North High"},
			2: {ID: 2, Name: "Bob", School: "South High"},
			3: {ID: 3, Name: "Carol", School: "North High"},
			4: {ID: 4, Name: "Dave", School: "East High"},
		},
	}
}

// finalSnapshot: semi-finals decided, final between Alice and Dave pending.
func finalSnapshot() *models.Snapshot {
	snap := semisSnapshot()
	snap.Rounds["1"][0].WinnerID = intp(1)
	snap.Rounds["1"][1].WinnerID = intp(4)
	snap.Rounds["2"][0].Player1ID = intp(1)
	snap.Rounds["2"][0].Player2ID = intp(4)
	return snap
}

type testEnv struct {
	repo       *fakeRepo
	celebrator *recordingCelebrator
	tickets    *TicketIssuer
	registry   *ViewRegistry
	view       *BracketView
}

func newTestEnv(t *testing.T, snap *models.Snapshot, hub *brackets.Hub) *testEnv {
	t.Helper()

	repo := &fakeRepo{snap: snap}
	celebrator := &recordingCelebrator{}
	tickets, err := NewTicketIssuer("test-secret", 0)
	require.NoError(t, err)

	logger := discardLogger()
	loader := NewSnapshotLoader(repo, brackets.NewBuilder(brackets.DefaultSpacing(), brackets.RenderContext{}, logger), logger)
	registry := NewViewRegistry(loader, repo, tickets, celebrator, hub, logger)

	return &testEnv{
		repo:       repo,
		celebrator: celebrator,
		tickets:    tickets,
		registry:   registry,
		view:       registry.View("7"),
	}
}

func (e *testEnv) load(t *testing.T) *brackets.Tree {
	t.Helper()
	tree, err := e.view.Reload(context.Background())
	require.NoError(t, err)
	return tree
}
