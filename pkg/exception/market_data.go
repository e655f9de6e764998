package exception

import "errors"

var (
	ErrEmptyBook         = errors.New("market data: book side is empty")
	ErrMalformedPrice    = errors.New("market data: malformed fractional price")
	ErrUnknownInstrument = errors.New("market data: unknown instrument")
	ErrInvalidBookDepth  = errors.New("market data: invalid book depth")
)
