package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/render"
	"github.com/Dosada05/tournament-bracket/services"
)

var errRoundParam = errors.New("round must be an integer")

type BracketHandler struct {
	views  *services.ViewRegistry
	logger *slog.Logger
}

func NewBracketHandler(views *services.ViewRegistry, logger *slog.Logger) *BracketHandler {
	return &BracketHandler{views: views, logger: logger}
}

func (h *BracketHandler) view(r *http.Request) *services.BracketView {
	return h.views.View(chi.URLParam(r, "tournamentID"))
}

// renderPage writes the HTML page. The page is rendered to a buffer first so a
// template failure never leaves a half-written document.
func (h *BracketHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, page render.Page) {
	var buf bytes.Buffer
	if err := render.HTML(&buf, page); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// page assembles the page of the view's current state with an optional error.
func (h *BracketHandler) page(v *services.BracketView, tree *brackets.Tree, err error) render.Page {
	page := render.Page{
		TournamentID: v.TournamentID,
		Tree:         tree,
		Error:        services.UserMessage(err),
	}
	if p := v.Controller.Pending(); p != nil {
		page.Pending = &render.Pending{
			Ticket:     p.Ticket,
			MatchID:    p.MatchID,
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Prompt:     p.Prompt,
		}
	}
	return page
}

func (h *BracketHandler) redirectToPage(w http.ResponseWriter, r *http.Request, tournamentID string) {
	http.Redirect(w, r, "/tournaments/"+tournamentID, http.StatusSeeOther)
}

// Health GET /healthz
func (h *BracketHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil)
}

// Page GET /tournaments/{tournamentID}
// Every page view fetches a fresh snapshot.
func (h *BracketHandler) Page(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	tree, err := v.Reload(r.Context())
	h.renderPage(w, r, http.StatusOK, h.page(v, tree, err))
}

// Tree GET /tournaments/{tournamentID}/tree
func (h *BracketHandler) Tree(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	tree, err := v.Reload(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(h.logger, w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{
		"tree":    tree,
		"state":   v.Controller.State().String(),
		"pending": v.Controller.Pending(),
	}, nil)
}

type selectRequest struct {
	MatchID  int `json:"match_id"`
	PlayerID int `json:"player_id"`
}

// Select POST /tournaments/{tournamentID}/select
func (h *BracketHandler) Select(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	asJSON := wantsJSON(r)

	var in selectRequest
	if asJSON {
		if err := readJSON(w, r, &in); err != nil {
			badRequestResponse(h.logger, w, r, err)
			return
		}
	} else {
		var err error
		if in.MatchID, err = formInt(r, "match_id"); err != nil {
			badRequestResponse(h.logger, w, r, err)
			return
		}
		if in.PlayerID, err = formInt(r, "player_id"); err != nil {
			badRequestResponse(h.logger, w, r, err)
			return
		}
	}

	if _, err := v.EnsureLoaded(r.Context()); err != nil {
		h.respondError(w, r, v, asJSON, err)
		return
	}

	pending, err := v.Controller.Select(brackets.Target{MatchID: in.MatchID, PlayerID: in.PlayerID})
	if err != nil {
		h.respondError(w, r, v, asJSON, err)
		return
	}

	if asJSON {
		_ = writeJSON(w, http.StatusOK, jsonResponse{"pending": pending}, nil)
		return
	}
	tree, _ := v.Current()
	h.renderPage(w, r, http.StatusOK, h.page(v, tree, nil))
}

type confirmRequest struct {
	Ticket string `json:"ticket"`
}

// Confirm POST /tournaments/{tournamentID}/confirm
func (h *BracketHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	asJSON := wantsJSON(r)

	var in confirmRequest
	if asJSON {
		if err := readJSON(w, r, &in); err != nil {
			badRequestResponse(h.logger, w, r, err)
			return
		}
	} else {
		in.Ticket = r.FormValue("ticket")
	}

	outcome, err := v.Controller.Confirm(r.Context(), in.Ticket)
	if err != nil {
		h.respondError(w, r, v, asJSON, err)
		return
	}

	if asJSON {
		resp := jsonResponse{"outcome": outcome}
		if outcome.ReloadErr != nil {
			resp["warning"] = services.UserMessage(outcome.ReloadErr)
		}
		_ = writeJSON(w, http.StatusOK, resp, nil)
		return
	}

	page := h.page(v, outcome.Tree, outcome.ReloadErr)
	page.Message = outcome.Message
	h.renderPage(w, r, http.StatusOK, page)
}

// Decline POST /tournaments/{tournamentID}/decline
func (h *BracketHandler) Decline(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	if err := v.Controller.Decline(); err != nil {
		h.respondError(w, r, v, wantsJSON(r), err)
		return
	}
	if wantsJSON(r) {
		_ = writeJSON(w, http.StatusOK, jsonResponse{"state": v.Controller.State().String()}, nil)
		return
	}
	h.redirectToPage(w, r, v.TournamentID)
}

// Reload POST /tournaments/{tournamentID}/reload
func (h *BracketHandler) Reload(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	tree, err := v.Reload(r.Context())
	if !wantsJSON(r) {
		if err != nil {
			h.renderPage(w, r, statusForError(err), h.page(v, nil, err))
			return
		}
		h.redirectToPage(w, r, v.TournamentID)
		return
	}
	if err != nil {
		mapServiceErrorToHTTP(h.logger, w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"tree": tree}, nil)
}

// Preview GET /tournaments/{tournamentID}/preview?round=N
func (h *BracketHandler) Preview(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	asJSON := wantsJSON(r)

	round, err := strconv.Atoi(r.URL.Query().Get("round"))
	if err != nil {
		badRequestResponse(h.logger, w, r, errRoundParam)
		return
	}

	tree, err := v.Preview(r.Context(), round)
	if err != nil {
		if asJSON {
			mapServiceErrorToHTTP(h.logger, w, r, err)
			return
		}
		h.renderPage(w, r, statusForError(err), render.Page{TournamentID: v.TournamentID, Error: services.UserMessage(err)})
		return
	}

	if asJSON {
		_ = writeJSON(w, http.StatusOK, jsonResponse{"tree": tree}, nil)
		return
	}
	h.renderPage(w, r, http.StatusOK, render.Page{TournamentID: v.TournamentID, Tree: tree, Static: true})
}

// respondError reports a failed operation. The page flow keeps showing the
// current tree with the message on top.
func (h *BracketHandler) respondError(w http.ResponseWriter, r *http.Request, v *services.BracketView, asJSON bool, err error) {
	if asJSON {
		mapServiceErrorToHTTP(h.logger, w, r, err)
		return
	}
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "internal server error", slog.Any("error", err))
	}
	tree, _ := v.Current()
	h.renderPage(w, r, status, h.page(v, tree, err))
}
