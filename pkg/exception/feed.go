package exception

import "errors"

var (
	ErrMalformedRecord = errors.New("feed: malformed record")
	ErrFieldCount      = errors.New("feed: unexpected field count")
)
