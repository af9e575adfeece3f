package services

import (
	"errors"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/repositories"
)

// Ошибки сервисного слоя, используемые в маппинге HTTP и в CLI.
var (
	// Данные сетки
	ErrDataIncomplete  = brackets.ErrDataIncomplete
	ErrLoadFailed      = errors.New("failed to load tournament data")
	ErrNoBracketLoaded = errors.New("bracket is not loaded")

	// Отправка победителя
	ErrUpdateFailed         = errors.New("failed to update match")
	ErrTransportFailure     = repositories.ErrTransport
	ErrApplicationRejection = repositories.ErrRejected

	// Выбор победителя
	ErrSlotNotSelectable  = errors.New("slot cannot be selected as winner")
	ErrNoPendingSelection = errors.New("no winner selection is awaiting confirmation")
	ErrStaleSelection     = errors.New("bracket changed since the selection was made, please select again")
	ErrSubmissionInFlight = errors.New("a winner update is already being submitted")
	ErrInvalidTicket      = errors.New("invalid or expired confirmation ticket")
)

// Сообщения для пользователя.
const (
	MsgDataIncomplete    = "Tournament data is incomplete. Please try again later."
	MsgLoadFailed        = "Failed to load tournament data. Please try again later."
	MsgUpdateFailed      = "Failed to update match. Please try again."
	MsgUpdateRejected    = "Failed to update match"
	MsgConfirmSelection  = "Are you sure you want to mark this player as the winner?"
	MsgUnexpected        = "Something went wrong. Please try again."
	msgChampionTemplate  = "Congratulations! %s is the champion of the tournament!"
	defaultChampionLabel = "Champion"
)

// UserMessage maps an error of the load/select/confirm cycle to the text shown
// to the operator. Upstream rejections are shown verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rejected *repositories.RejectedError
	switch {
	case errors.Is(err, ErrDataIncomplete):
		return MsgDataIncomplete
	case errors.As(err, &rejected):
		if rejected.Reason != "" {
			return rejected.Reason
		}
		if errors.Is(err, ErrUpdateFailed) {
			return MsgUpdateRejected
		}
		return MsgLoadFailed
	case errors.Is(err, ErrUpdateFailed):
		return MsgUpdateFailed
	case errors.Is(err, ErrLoadFailed):
		return MsgLoadFailed
	case errors.Is(err, ErrSlotNotSelectable),
		errors.Is(err, ErrNoPendingSelection),
		errors.Is(err, ErrStaleSelection),
		errors.Is(err, ErrSubmissionInFlight),
		errors.Is(err, ErrInvalidTicket),
		errors.Is(err, ErrNoBracketLoaded):
		return capitalize(err.Error())
	default:
		return MsgUnexpected
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
