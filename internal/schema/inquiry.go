package schema

import (
	"strconv"

	"tradeflow/internal/codec"
)

// Inquiry is a customer request for quote. It is keyed by InquiryID, which is
// independent of the bond id.
type Inquiry struct {
	InquiryID string
	Bond      Bond
	Side      Side
	Quantity  int64
	Price     float64
	State     InquiryState
}

// PersistKey implements Recordable.
func (i Inquiry) PersistKey() string {
	return i.InquiryID
}

// ToRecord implements Recordable.
func (i Inquiry) ToRecord() []string {
	return []string{
		i.InquiryID,
		i.Bond.ID,
		i.Side.String(),
		strconv.FormatInt(i.Quantity, 10),
		codec.EncodePrice(i.Price),
		i.State.String(),
	}
}
