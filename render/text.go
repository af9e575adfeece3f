package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dosada05/tournament-bracket/brackets"
)

// Палитра терминального вывода
var (
	clrBorder = lipgloss.Color("#30363d")
	clrSubtle = lipgloss.Color("#8b949e")
	clrGold   = lipgloss.Color("#e3b341")
	clrGreen  = lipgloss.Color("#3fb950")
	clrRed    = lipgloss.Color("#f85149")
	clrTitle  = lipgloss.Color("#58a6ff")

	titleStyle = lipgloss.NewStyle().Foreground(clrTitle).Bold(true)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrBorder).
			Padding(0, 1)
	finalCardStyle = cardStyle.BorderForeground(clrGold)
	winnerStyle    = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	loserStyle     = lipgloss.NewStyle().Foreground(clrRed).Strikethrough(true)
	byeStyle       = lipgloss.NewStyle().Foreground(clrSubtle).Italic(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(clrSubtle)
)

// cellsPerPixel scales the page spacing to blank terminal lines.
const cellsPerPixel = 30

// Text renders the tree as side by side round columns. Selectable slots are
// suffixed with the "match:player" pair accepted by the select command.
func Text(tree *brackets.Tree) string {
	if tree == nil {
		return noticeStyle.Render("No bracket loaded.")
	}
	if len(tree.Rounds) == 0 {
		return noticeStyle.Render(tree.Notice)
	}

	columns := make([]string, 0, len(tree.Rounds))
	for _, col := range tree.Rounds {
		columns = append(columns, textColumn(col))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, withGaps(columns)...)
}

func withGaps(columns []string) []string {
	out := make([]string, 0, len(columns)*2)
	for i, c := range columns {
		if i > 0 {
			out = append(out, "   ")
		}
		out = append(out, c)
	}
	return out
}

func textColumn(col *brackets.RoundColumn) string {
	gap := strings.Repeat("\n", col.Spacing/cellsPerPixel)

	parts := []string{titleStyle.Render(col.Title)}
	for i, card := range col.Matches {
		if i > 0 && gap != "" {
			parts = append(parts, gap)
		}
		parts = append(parts, textCard(card))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func textCard(card *brackets.MatchCard) string {
	style := cardStyle
	if card.Championship {
		style = finalCardStyle
	}
	if card.Placeholder {
		return style.Render(byeStyle.Render("TBD"))
	}

	lines := make([]string, 0, len(card.Slots))
	for _, slot := range card.Slots {
		lines = append(lines, textSlot(card, slot))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func textSlot(card *brackets.MatchCard, slot *brackets.Slot) string {
	label := slot.Label
	if slot.Seeded {
		label += " [S]"
	}
	if slot.School != "" {
		label += " (" + slot.School + ")"
	}
	if slot.Trophy {
		label = "🏆 " + label
	}

	switch {
	case slot.IsPlaceholder():
		label = byeStyle.Render(label)
	case slot.Outcome == brackets.OutcomeWinner:
		label = winnerStyle.Render(label)
	case slot.Outcome == brackets.OutcomeLoser:
		label = loserStyle.Render(label)
	case slot.Color != "":
		label = lipgloss.NewStyle().Foreground(lipgloss.Color(slot.Color)).Render(label)
	}

	if slot.Selectable {
		label += noticeStyle.Render(fmt.Sprintf("  %d:%d", card.MatchID, *slot.PlayerID))
	}
	return label
}
