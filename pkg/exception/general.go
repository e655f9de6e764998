package exception

import "errors"

// General errors
var (
	ErrNotFound            = errors.New("entity not found")
	ErrNilInstance         = errors.New("nil instance")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrArgumentUnsupported = errors.New("argument unsupported")
)
