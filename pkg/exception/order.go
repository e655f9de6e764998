package exception

import "errors"

var (
	ErrOrderUnsupportedSide = errors.New("order: unsupported side")
	ErrOrderUnsupportedType = errors.New("order: unsupported type")
)

var (
	ErrInquiryUnknownState = errors.New("inquiry: unknown state")
)
