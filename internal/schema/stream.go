package schema

import (
	"strconv"

	"tradeflow/internal/codec"
)

// PriceStreamOrder is one side of a streamed two-way quote.
type PriceStreamOrder struct {
	Price           float64
	VisibleQuantity int64
	HiddenQuantity  int64
	Side            PricingSide
}

func (o PriceStreamOrder) appendRecord(rec []string) []string {
	return append(rec,
		codec.EncodePrice(o.Price),
		strconv.FormatInt(o.VisibleQuantity, 10),
		strconv.FormatInt(o.HiddenQuantity, 10),
		o.Side.String(),
	)
}

// PriceStream is a two-way quote published to the street.
type PriceStream struct {
	Bond  Bond
	Bid   PriceStreamOrder
	Offer PriceStreamOrder
}

// PersistKey implements Recordable.
func (s PriceStream) PersistKey() string {
	return s.Bond.ID
}

// ToRecord implements Recordable.
func (s PriceStream) ToRecord() []string {
	rec := make([]string, 0, 9)
	rec = append(rec, s.Bond.ID)
	rec = s.Bid.appendRecord(rec)
	return s.Offer.appendRecord(rec)
}

// AlgoStream is the quoting engine's decision wrapping the stream it produced.
type AlgoStream struct {
	Stream PriceStream
}

// PersistKey implements Recordable.
func (a AlgoStream) PersistKey() string {
	return a.Stream.PersistKey()
}

// ToRecord implements Recordable.
func (a AlgoStream) ToRecord() []string {
	return a.Stream.ToRecord()
}
