package usecase

import "errors"

var (
	// ErrInvalidSymbol marks input that does not normalize to a tradable symbol.
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrNoData marks a symbol with no usable series after a recompute attempt.
	ErrNoData = errors.New("no data for symbol")
)
