package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/render"
	"github.com/Dosada05/tournament-bracket/storage"
)

// ChampionshipDecided is emitted once a confirmed winner of the final has been
// written upstream and the bracket was rebuilt.
type ChampionshipDecided struct {
	TournamentID string
	MatchID      int
	WinnerID     int
	WinnerName   string
	// Tree is the rebuilt tree, nil when the reload after the update failed.
	Tree *brackets.Tree
}

// Message returns the congratulation text shown to the operator.
func (e ChampionshipDecided) Message() string {
	name := e.WinnerName
	if name == "" {
		name = defaultChampionLabel
	}
	return fmt.Sprintf(msgChampionTemplate, name)
}

// Celebrator - получатель сигнала о решённом финале.
type Celebrator interface {
	Celebrate(ctx context.Context, event ChampionshipDecided) error
}

// HubCelebrator pushes the signal to every page open for the tournament.
type HubCelebrator struct {
	hub *brackets.Hub
}

func NewHubCelebrator(hub *brackets.Hub) *HubCelebrator {
	return &HubCelebrator{hub: hub}
}

func (c *HubCelebrator) Celebrate(_ context.Context, event ChampionshipDecided) error {
	c.hub.BroadcastToRoom(brackets.RoomForTournament(event.TournamentID), brackets.WebSocketMessage{
		Type: brackets.MessageChampionshipDecided,
		Payload: brackets.ChampionshipPayload{
			TournamentID: event.TournamentID,
			WinnerName:   event.WinnerName,
			Message:      event.Message(),
		},
	})
	return nil
}

// ArchiveCelebrator publishes the final bracket page to object storage.
type ArchiveCelebrator struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewArchiveCelebrator(uploader storage.FileUploader, logger *slog.Logger) *ArchiveCelebrator {
	return &ArchiveCelebrator{uploader: uploader, logger: logger}
}

func (c *ArchiveCelebrator) Celebrate(ctx context.Context, event ChampionshipDecided) error {
	if event.Tree == nil {
		c.logger.WarnContext(ctx, "no rebuilt tree to archive", slog.String("tournament_id", event.TournamentID))
		return nil
	}

	var buf bytes.Buffer
	err := render.HTML(&buf, render.Page{
		TournamentID: event.TournamentID,
		Tree:         event.Tree,
		Message:      event.Message(),
		Static:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to render archive for tournament %s: %w", event.TournamentID, err)
	}

	res, err := c.uploader.Upload(ctx, storage.ArchiveKey(event.TournamentID), "text/html; charset=utf-8", &buf)
	if err != nil {
		return fmt.Errorf("failed to archive final bracket for tournament %s: %w", event.TournamentID, err)
	}

	c.logger.InfoContext(ctx, "final bracket archived",
		slog.String("tournament_id", event.TournamentID),
		slog.String("location", res.Location))
	return nil
}

// MultiCelebrator fans the signal out to every sink, one failing sink does not
// stop the others.
type MultiCelebrator []Celebrator

func (m MultiCelebrator) Celebrate(ctx context.Context, event ChampionshipDecided) error {
	var errs []error
	for _, c := range m {
		if c == nil {
			continue
		}
		if err := c.Celebrate(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
