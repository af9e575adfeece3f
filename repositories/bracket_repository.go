package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/tournament-bracket/models"
)

const userAgent = "tournament-bracket/1.0"

// BracketRepository - доступ к внешнему API сетки. Это единственный источник
// данных ядра: снимки только читаются, победители только отправляются.
type BracketRepository interface {
	FetchSnapshot(ctx context.Context, tournamentID string) (*models.Snapshot, error)
	UpdateMatchWinner(ctx context.Context, matchID, winnerID int) error
}

type httpBracketRepository struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTPBracketRepository creates a repository for the upstream rooted at baseURL.
// A nil client gets a default one with the given timeout.
func NewHTTPBracketRepository(baseURL string, client *http.Client, timeout time.Duration) (BracketRepository, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream URL %q: scheme and host are required", baseURL)
	}

	c := http.Client{Timeout: timeout}
	if client != nil {
		c = *client
	}
	c.Transport = NewHeaderOverrideTransport(c.Transport, func(req *http.Request) {
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
	})

	return &httpBracketRepository{baseURL: u, client: &c}, nil
}

func (r *httpBracketRepository) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return r.baseURL.String() + "/" + strings.Join(escaped, "/")
}

func (r *httpBracketRepository) FetchSnapshot(ctx context.Context, tournamentID string) (*models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint("api", "tournament", tournamentID, "bracket"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bracket request for tournament %s: %w", tournamentID, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching bracket for tournament %s: %v", ErrTransport, tournamentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var snap models.Snapshot
	if err := decodeBody(resp, &snap); err != nil {
		return nil, err
	}
	if snap.Error != "" {
		return nil, &RejectedError{Reason: snap.Error}
	}
	return &snap, nil
}

type updateMatchRequest struct {
	WinnerID int `json:"winner_id"`
}

type updateMatchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (r *httpBracketRepository) UpdateMatchWinner(ctx context.Context, matchID, winnerID int) error {
	payload, err := json.Marshal(updateMatchRequest{WinnerID: winnerID})
	if err != nil {
		return fmt.Errorf("failed to encode update for match %d: %w", matchID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.endpoint("api", "match", strconv.Itoa(matchID), "update"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build update request for match %d: %w", matchID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: updating match %d: %v", ErrTransport, matchID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	var out updateMatchResponse
	if err := decodeBody(resp, &out); err != nil {
		return err
	}
	if !out.Success {
		return &RejectedError{Reason: out.Error}
	}
	return nil
}
