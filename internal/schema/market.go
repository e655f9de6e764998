package schema

import (
	"strconv"

	"tradeflow/internal/codec"
)

// Order is a single market data level.
type Order struct {
	Price    float64
	Quantity int64
	Side     PricingSide
}

// BidOffer is the best order on each side of one book at one instant.
type BidOffer struct {
	Bid   Order
	Offer Order
}

// Spread returns offer minus bid.
func (b BidOffer) Spread() float64 {
	return b.Offer.Price - b.Bid.Price
}

// OrderBook holds the bid and offer stacks for one bond. Updates replace the
// whole book; stacks are never patched in place.
type OrderBook struct {
	Bond   Bond
	Bids   []Order
	Offers []Order
}

// PersistKey implements Recordable.
func (b OrderBook) PersistKey() string {
	return b.Bond.ID
}

// ToRecord implements Recordable.
func (b OrderBook) ToRecord() []string {
	rec := make([]string, 0, 1+2*(len(b.Bids)+len(b.Offers)))
	rec = append(rec, b.Bond.ID)
	for _, o := range b.Bids {
		rec = append(rec, codec.EncodePrice(o.Price), strconv.FormatInt(o.Quantity, 10))
	}
	for _, o := range b.Offers {
		rec = append(rec, codec.EncodePrice(o.Price), strconv.FormatInt(o.Quantity, 10))
	}
	return rec
}

// Price is an internal mid price with its bid/offer spread.
type Price struct {
	Bond   Bond
	Mid    float64
	Spread float64
}

// NewPriceFromBidOffer derives mid and spread from a two-sided price.
func NewPriceFromBidOffer(bond Bond, bid, offer float64) Price {
	return Price{
		Bond:   bond,
		Mid:    (bid + offer) / 2,
		Spread: offer - bid,
	}
}

// PersistKey implements Recordable.
func (p Price) PersistKey() string {
	return p.Bond.ID
}

// ToRecord implements Recordable.
func (p Price) ToRecord() []string {
	return []string{
		p.Bond.ID,
		codec.EncodePrice(p.Mid),
		codec.EncodePrice(p.Spread),
	}
}
