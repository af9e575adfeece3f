package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/models"
	"github.com/Dosada05/tournament-bracket/repositories"
)

// SnapshotLoader загружает снимок сетки и сразу передаёт его в Builder.
// Кэширования нет: каждый вызов делает новый запрос.
type SnapshotLoader struct {
	repo    repositories.BracketRepository
	builder *brackets.Builder
	logger  *slog.Logger
}

func NewSnapshotLoader(repo repositories.BracketRepository, builder *brackets.Builder, logger *slog.Logger) *SnapshotLoader {
	return &SnapshotLoader{
		repo:    repo,
		builder: builder,
		logger:  logger,
	}
}

// Fetch returns a fresh snapshot without building it.
func (l *SnapshotLoader) Fetch(ctx context.Context, tournamentID string) (*models.Snapshot, error) {
	snap, err := l.repo.FetchSnapshot(ctx, tournamentID)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to fetch bracket snapshot",
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: tournament %s: %w", ErrLoadFailed, tournamentID, err)
	}
	return snap, nil
}

// Load fetches a snapshot and builds a new tree from it.
func (l *SnapshotLoader) Load(ctx context.Context, tournamentID string) (*models.Snapshot, *brackets.Tree, error) {
	snap, err := l.Fetch(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}

	tree, err := l.builder.Build(snap)
	if err != nil {
		if errors.Is(err, brackets.ErrDataIncomplete) {
			l.logger.WarnContext(ctx, "bracket snapshot is incomplete",
				slog.String("tournament_id", tournamentID), slog.Any("error", err))
		}
		return snap, nil, fmt.Errorf("tournament %s: %w", tournamentID, err)
	}

	l.logger.DebugContext(ctx, "bracket built",
		slog.String("tournament_id", tournamentID),
		slog.Int("rounds", len(tree.Rounds)),
		slog.Int("trophies", tree.Trophies()))
	return snap, tree, nil
}

// Preview fetches a snapshot and builds the read-only replay up to a round.
func (l *SnapshotLoader) Preview(ctx context.Context, tournamentID string, upToRound int) (*brackets.Tree, error) {
	snap, err := l.Fetch(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	tree, err := l.builder.Preview(snap, upToRound)
	if err != nil {
		return nil, fmt.Errorf("tournament %s: %w", tournamentID, err)
	}
	return tree, nil
}
