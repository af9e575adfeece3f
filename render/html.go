package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/Dosada05/tournament-bracket/brackets"
)

// Pending describes a selection awaiting the operator's yes/no answer.
type Pending struct {
	Ticket     string
	MatchID    int
	PlayerID   int
	PlayerName string
	Prompt     string
}

// Page - всё, что нужно странице турнира.
type Page struct {
	TournamentID string
	Tree         *brackets.Tree
	Error        string
	Message      string
	Pending      *Pending
	// Static pages (archive, preview) carry no forms and no live updates.
	Static bool
}

// HTML renders the bracket page.
func HTML(w io.Writer, page Page) error {
	if err := pageTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render bracket page: %w", err)
	}
	return nil
}

var pageTmpl = template.Must(template.New("bracket").Funcs(template.FuncMap{
	"slotClass": slotClass,
	"deref": func(id *int) int {
		if id == nil {
			return 0
		}
		return *id
	},
	"theme": func(t *brackets.Tree) string {
		if t == nil || t.Theme == "" {
			return brackets.ThemeLight
		}
		return t.Theme
	},
}).Parse(pageHTML))

func slotClass(s *brackets.Slot) string {
	class := "player"
	if s.IsPlaceholder() {
		class += " bye"
	}
	switch s.Outcome {
	case brackets.OutcomeWinner:
		class += " winner"
	case brackets.OutcomeLoser:
		class += " loser"
	}
	return class
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Tournament {{.TournamentID}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 24px; }
        .theme-light { background: #f8fafc; color: #0f172a; }
        .theme-dark { background: #0f172a; color: #e2e8f0; }
        .tournament-bracket { display: flex; gap: 40px; overflow-x: auto; }
        .round { display: flex; flex-direction: column; min-width: 220px; }
        .round-title { text-align: center; font-size: 1rem; margin: 0 0 16px; }
        .round-matches { display: flex; flex-direction: column; justify-content: space-around; flex: 1; }
        .match-card { border: 1px solid #cbd5e1; border-radius: 8px; overflow: hidden; }
        .championship-match { border: 2px solid #f59e0b; box-shadow: 0 0 12px rgba(245, 158, 11, 0.4); }
        .player { display: flex; align-items: center; gap: 8px; padding: 8px 10px; border-left: 4px solid transparent; }
        .player + .player { border-top: 1px solid #e2e8f0; }
        .player.bye { opacity: 0.55; font-style: italic; }
        .player.winner { font-weight: 700; background: rgba(34, 197, 94, 0.15); }
        .player.loser { opacity: 0.6; text-decoration: line-through; }
        .player-school { font-size: 0.75rem; opacity: 0.75; }
        .seeded-badge { font-size: 0.65rem; padding: 1px 6px; border-radius: 999px; background: #6366f1; color: #fff; }
        .winner-trophy { margin-left: auto; }
        .match-connector { border-right: 2px solid #94a3b8; margin-left: auto; width: 20px; }
        .select-winner { margin-left: auto; }
        .bracket-notice, .bracket-error, .championship-message, .confirm-selection { padding: 12px 16px; border-radius: 8px; margin-bottom: 16px; }
        .bracket-error { background: #fee2e2; color: #991b1b; }
        .championship-message { background: #fef3c7; color: #92400e; font-weight: 700; }
        .confirm-selection { background: #e0e7ff; color: #1e1b4b; }
    </style>
</head>
<body class="theme-{{theme .Tree}}">
    <h1>Tournament {{.TournamentID}}</h1>
    {{if .Error}}<div class="bracket-error" role="alert">{{.Error}}</div>{{end}}
    {{if .Message}}<div class="championship-message">{{.Message}}</div>{{end}}
    {{with .Pending}}
    <div class="confirm-selection" data-match-id="{{.MatchID}}" data-player-id="{{.PlayerID}}">
        <p>{{.Prompt}}</p>
        <p class="player-name">{{.PlayerName}}</p>
        <form method="post" action="/tournaments/{{$.TournamentID}}/confirm" class="confirm-form">
            <input type="hidden" name="ticket" value="{{.Ticket}}">
            <button type="submit">Yes</button>
        </form>
        <form method="post" action="/tournaments/{{$.TournamentID}}/decline" class="decline-form">
            <button type="submit">No</button>
        </form>
    </div>
    {{end}}
    {{with .Tree}}
    {{if .Notice}}<p class="bracket-notice">{{.Notice}}</p>{{end}}
    <div class="tournament-bracket" data-tournament-id="{{$.TournamentID}}" data-generation="{{.Generation}}"{{if .ReadOnly}} data-read-only="true"{{end}}>
        {{range .Rounds}}
        <div class="round" data-round="{{.Number}}">
            <h3 class="round-title">{{.Title}}</h3>
            <div class="round-matches" style="gap: {{.Spacing}}px">
                {{range .Matches}}
                <div class="match-card{{if .Championship}} championship-match{{end}}" data-match-id="{{.MatchID}}">
                    {{$card := .}}
                    {{range .Slots}}
                    <div class="{{slotClass .}}"{{if .Color}} style="border-left-color: {{.Color}}"{{end}}>
                        <span class="player-name">{{.Label}}</span>
                        {{if .Seeded}}<span class="seeded-badge">Seed</span>{{end}}
                        {{if .School}}<span class="player-school">{{.School}}</span>{{end}}
                        {{if .Trophy}}<span class="winner-trophy" title="Champion">&#127942;</span>{{end}}
                        {{if and .Selectable (not $.Static)}}
                        <form method="post" action="/tournaments/{{$.TournamentID}}/select" class="select-winner">
                            <input type="hidden" name="match_id" value="{{$card.MatchID}}">
                            <input type="hidden" name="player_id" value="{{deref .PlayerID}}">
                            <button type="submit">Winner</button>
                        </form>
                        {{end}}
                    </div>
                    {{end}}
                </div>
                {{with .Connector}}<div class="match-connector" style="height: {{.Height}}px"></div>{{end}}
                {{end}}
            </div>
        </div>
        {{end}}
    </div>
    {{end}}
    {{if not .Static}}
    <script>
        (function () {
            var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            var ws = new WebSocket(proto + location.host + '/ws/tournaments/{{.TournamentID}}');
            ws.onmessage = function (event) {
                var msg = JSON.parse(event.data);
                if (msg.type === 'CHAMPIONSHIP_DECIDED') {
                    alert(msg.payload.message);
                }
                if (msg.type === 'BRACKET_UPDATED' || msg.type === 'CHAMPIONSHIP_DECIDED') {
                    location.replace('/tournaments/{{.TournamentID}}');
                }
            };
        })();
    </script>
    {{end}}
</body>
</html>
`
