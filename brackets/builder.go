package brackets

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-bracket/models"
)

// Builder строит визуальное дерево сетки из снимка.
// Builder не хранит состояния между вызовами: каждый проход начинается с нуля.
type Builder struct {
	spacing Spacing
	ctx     RenderContext
	logger  *slog.Logger
}

func NewBuilder(spacing Spacing, ctx RenderContext, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		spacing: spacing,
		ctx:     ctx,
		logger:  logger,
	}
}

type roundKey struct {
	number int
	key    string
}

// sortedRounds orders the round keys numerically, so "10" comes after "2".
func sortedRounds(rounds map[string][]*models.Match) ([]roundKey, error) {
	keys := make([]roundKey, 0, len(rounds))
	seen := make(map[int]string, len(rounds))
	for key := range rounds {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("%w: round key %q is not a number", ErrDataIncomplete, key)
		}
		if n < 1 {
			return nil, fmt.Errorf("%w: round key %q must be positive", ErrDataIncomplete, key)
		}
		if prev, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: round keys %q and %q name the same round", ErrDataIncomplete, prev, key)
		}
		seen[n] = key
		keys = append(keys, roundKey{number: n, key: key})
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].number < keys[j].number
	})
	return keys, nil
}

// Build renders the snapshot into a new tree and binds its selection targets.
func (b *Builder) Build(snap *models.Snapshot) (*Tree, error) {
	return b.build(snap, false)
}

func (b *Builder) build(snap *models.Snapshot, readOnly bool) (*Tree, error) {
	if snap == nil || snap.Rounds == nil || snap.Players == nil {
		return nil, fmt.Errorf("%w: missing rounds or players", ErrDataIncomplete)
	}

	tree := &Tree{
		Theme:    b.ctx.theme(),
		ReadOnly: readOnly,
		Rounds:   []*RoundColumn{},
	}

	if len(snap.Rounds) == 0 {
		tree.Notice = NoMatchesNotice
		tree.bind()
		return tree, nil
	}

	keys, err := sortedRounds(snap.Rounds)
	if err != nil {
		return nil, err
	}
	if countMatches(snap.Rounds) == 0 {
		tree.Notice = NoMatchesNotice
		tree.bind()
		return tree, nil
	}

	// The championship is the highest-numbered round. With contiguous keys
	// this equals the number of rounds.
	totalRounds := keys[len(keys)-1].number
	if totalRounds != len(keys) {
		b.logger.Warn("round numbers are not contiguous",
			slog.Int("rounds", len(keys)), slog.Int("highest_round", totalRounds))
	}
	tree.TotalRounds = totalRounds

	ledger := &trophyLedger{}
	for _, rk := range keys {
		col := &RoundColumn{
			Number:  rk.number,
			Title:   RoundTitle(rk.number, totalRounds),
			Spacing: b.spacing.For(rk.number, totalRounds),
			Matches: make([]*MatchCard, 0, len(snap.Rounds[rk.key])),
		}
		isFinal := rk.number == totalRounds

		for _, m := range snap.Rounds[rk.key] {
			card := b.renderMatch(m, snap.Players, rk.number, totalRounds, ledger)
			if readOnly {
				clearTrophies(card)
			} else if !isFinal {
				card.Connector = &Connector{Height: col.Spacing}
			}
			col.Matches = append(col.Matches, card)
		}
		tree.Rounds = append(tree.Rounds, col)
	}

	if ledger.awarded && !readOnly {
		tree.trophies = 1
	}
	tree.bind()
	return tree, nil
}

// countMatches counts match entries, nil entries included: they still render
// as placeholder cards.
func countMatches(rounds map[string][]*models.Match) int {
	n := 0
	for _, matches := range rounds {
		n += len(matches)
	}
	return n
}

func clearTrophies(card *MatchCard) {
	for _, slot := range card.Slots {
		slot.Trophy = false
	}
}
