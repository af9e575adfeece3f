package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const DefaultTicketTTL = 2 * time.Minute

// Selection - выбор победителя, ожидающий подтверждения оператором.
type Selection struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	MatchID      int       `json:"match_id"`
	PlayerID     int       `json:"player_id"`
	Generation   uint64    `json:"generation"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type selectionClaims struct {
	TournamentID string `json:"tid"`
	MatchID      int    `json:"mid"`
	PlayerID     int    `json:"pid"`
	Generation   uint64 `json:"gen"`
	jwt.RegisteredClaims
}

// TicketIssuer signs pending selections so the confirm step can prove it refers
// to the exact slot and tree generation the operator clicked.
type TicketIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTicketIssuer(secret string, ttl time.Duration) (*TicketIssuer, error) {
	if secret == "" {
		return nil, errors.New("confirmation secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue assigns the selection an ID and expiry and returns its signed ticket.
func (i *TicketIssuer) Issue(sel *Selection) (string, error) {
	now := time.Now()
	sel.ID = uuid.NewString()
	sel.ExpiresAt = now.Add(i.ttl)

	claims := selectionClaims{
		TournamentID: sel.TournamentID,
		MatchID:      sel.MatchID,
		PlayerID:     sel.PlayerID,
		Generation:   sel.Generation,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sel.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sel.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign confirmation ticket: %w", err)
	}
	return token, nil
}

// Parse verifies a ticket and returns the selection it carries.
func (i *TicketIssuer) Parse(ticket string) (*Selection, error) {
	claims := &selectionClaims{}
	token, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	sel := &Selection{
		ID:           claims.ID,
		TournamentID: claims.TournamentID,
		MatchID:      claims.MatchID,
		PlayerID:     claims.PlayerID,
		Generation:   claims.Generation,
	}
	if claims.ExpiresAt != nil {
		sel.ExpiresAt = claims.ExpiresAt.Time
	}
	return sel, nil
}
