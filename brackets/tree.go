package brackets

// NoMatchesNotice is shown when a snapshot is valid but has no rounds yet.
const NoMatchesNotice = "No matches available. Please add players and generate the bracket first."

type SlotKind string

const (
	SlotEmpty       SlotKind = "empty"       // nil player id, rendered as TBD
	SlotUnavailable SlotKind = "unavailable" // id present, player missing from the snapshot
	SlotSeated      SlotKind = "seated"
)

type Outcome string

const (
	OutcomeNone   Outcome = ""
	OutcomeWinner Outcome = "winner"
	OutcomeLoser  Outcome = "loser"
)

// Slot - одна позиция игрока внутри матча.
type Slot struct {
	PlayerID   *int     `json:"player_id,omitempty"`
	Kind       SlotKind `json:"kind"`
	Label      string   `json:"label"`
	School     string   `json:"school,omitempty"`
	Seeded     bool     `json:"seeded,omitempty"`
	Color      string   `json:"color,omitempty"`
	Outcome    Outcome  `json:"outcome,omitempty"`
	Trophy     bool     `json:"trophy,omitempty"`
	Selectable bool     `json:"selectable"`
}

// IsPlaceholder reports whether the slot renders as TBD or Bye/Unavailable.
func (s *Slot) IsPlaceholder() bool {
	return s == nil || s.Kind != SlotSeated
}

type Connector struct {
	Height int `json:"height"`
}

// MatchCard - визуальный блок матча: два слота и оформление финала.
type MatchCard struct {
	MatchID      int        `json:"match_id"`
	Round        int        `json:"round"`
	Championship bool       `json:"championship"`
	Placeholder  bool       `json:"placeholder,omitempty"`
	WinnerID     *int       `json:"winner_id,omitempty"`
	Slots        []*Slot    `json:"slots"`
	Connector    *Connector `json:"connector,omitempty"`
}

type RoundColumn struct {
	Number  int          `json:"number"`
	Title   string       `json:"title"`
	Spacing int          `json:"spacing"`
	Matches []*MatchCard `json:"matches"`
}

// Target identifies a slot an operator can pick as the winner of its match.
type Target struct {
	MatchID  int `json:"match_id"`
	PlayerID int `json:"player_id"`
}

type targetRef struct {
	card *MatchCard
	slot *Slot
}

// Tree is the full visual bracket produced by one build pass. A tree is never
// patched in place: every load produces a new one.
type Tree struct {
	Generation  uint64         `json:"generation"`
	Theme       string         `json:"theme,omitempty"`
	Notice      string         `json:"notice,omitempty"`
	ReadOnly    bool           `json:"read_only,omitempty"`
	TotalRounds int            `json:"total_rounds"`
	Rounds      []*RoundColumn `json:"rounds"`

	trophies int
	targets  map[Target]targetRef
}

// Trophies returns how many trophy decorations the tree carries (0 or 1).
func (t *Tree) Trophies() int {
	return t.trophies
}

// Champion returns the slot decorated with the trophy, if any.
func (t *Tree) Champion() *Slot {
	for _, col := range t.Rounds {
		for _, card := range col.Matches {
			for _, slot := range card.Slots {
				if slot.Trophy {
					return slot
				}
			}
		}
	}
	return nil
}

// Match returns the card rendered for matchID.
func (t *Tree) Match(matchID int) (*MatchCard, bool) {
	for _, col := range t.Rounds {
		for _, card := range col.Matches {
			if !card.Placeholder && card.MatchID == matchID {
				return card, true
			}
		}
	}
	return nil, false
}

// Lookup resolves a selection target bound during the last build pass.
func (t *Tree) Lookup(target Target) (*MatchCard, *Slot, bool) {
	ref, ok := t.targets[target]
	if !ok {
		return nil, nil, false
	}
	return ref.card, ref.slot, true
}

// Targets lists the bound selection targets in render order.
func (t *Tree) Targets() []Target {
	targets := make([]Target, 0, len(t.targets))
	for _, col := range t.Rounds {
		for _, card := range col.Matches {
			for _, slot := range card.Slots {
				if slot.Selectable {
					targets = append(targets, Target{MatchID: card.MatchID, PlayerID: *slot.PlayerID})
				}
			}
		}
	}
	return targets
}

// bind attaches winner selection to every slot that carries a player id and is
// not already the recorded winner. It runs once, as the last step of a build.
func (t *Tree) bind() {
	t.targets = make(map[Target]targetRef)
	if t.ReadOnly {
		return
	}
	for _, col := range t.Rounds {
		for _, card := range col.Matches {
			if card.Placeholder {
				continue
			}
			for _, slot := range card.Slots {
				if slot.PlayerID == nil {
					continue
				}
				if card.WinnerID != nil && *card.WinnerID == *slot.PlayerID {
					continue
				}
				target := Target{MatchID: card.MatchID, PlayerID: *slot.PlayerID}
				if _, dup := t.targets[target]; dup {
					continue
				}
				slot.Selectable = true
				t.targets[target] = targetRef{card: card, slot: slot}
			}
		}
	}
}
