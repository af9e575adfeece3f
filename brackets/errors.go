package brackets

import "errors"

var (
	// ErrDataIncomplete - в снимке нет rounds или players, либо номера раундов некорректны.
	ErrDataIncomplete = errors.New("tournament data is incomplete")
)
