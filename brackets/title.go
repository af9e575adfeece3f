package brackets

import "fmt"

// RoundTitle returns the label of a round. The checks run in a fixed order:
// with a single round, round 1 is the Final rather than the First Round.
func RoundTitle(round, totalRounds int) string {
	switch {
	case round == totalRounds:
		return "Final"
	case round == totalRounds-1:
		return "Semi-Finals"
	case round == totalRounds-2:
		return "Quarter-Finals"
	case round == 1:
		return "First Round"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}
