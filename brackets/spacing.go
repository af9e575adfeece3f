package brackets

const (
	DefaultSpacingBase   = 60
	DefaultSpacingFactor = 2
)

// Spacing вычисляет вертикальный отступ между матчами раунда.
// Отступ растёт экспоненциально: в поздних раундах матчей меньше, а места больше.
type Spacing struct {
	Base   int
	Factor int
}

func DefaultSpacing() Spacing {
	return Spacing{Base: DefaultSpacingBase, Factor: DefaultSpacingFactor}
}

// For returns base * factor^(round-1). totalRounds is unused by this curve.
func (s Spacing) For(round, totalRounds int) int {
	base, factor := s.Base, s.Factor
	if base <= 0 {
		base = DefaultSpacingBase
	}
	if factor <= 0 {
		factor = DefaultSpacingFactor
	}

	spacing := base
	for i := 1; i < round; i++ {
		spacing *= factor
	}
	return spacing
}
