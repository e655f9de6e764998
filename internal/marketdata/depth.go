package marketdata

import (
	"sort"

	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// BestBidOffer returns the highest bid and the lowest offer of book. Ties keep
// the first occurrence. An empty side yields exception.ErrEmptyBook.
func BestBidOffer(book schema.OrderBook) (schema.BidOffer, error) {
	if len(book.Bids) == 0 || len(book.Offers) == 0 {
		return schema.BidOffer{}, exception.ErrEmptyBook
	}

	bid := book.Bids[0]
	for _, o := range book.Bids[1:] {
		if o.Price > bid.Price {
			bid = o
		}
	}

	offer := book.Offers[0]
	for _, o := range book.Offers[1:] {
		if o.Price < offer.Price {
			offer = o
		}
	}

	return schema.BidOffer{Bid: bid, Offer: offer}, nil
}

// AggregateDepth collapses each side into one order per distinct price with
// quantities summed. Bids come back best (highest) first, offers lowest first.
func AggregateDepth(book schema.OrderBook) schema.OrderBook {
	return schema.OrderBook{
		Bond:   book.Bond,
		Bids:   aggregateSide(book.Bids, schema.PricingSideBid),
		Offers: aggregateSide(book.Offers, schema.PricingSideOffer),
	}
}

func aggregateSide(stack []schema.Order, side schema.PricingSide) []schema.Order {
	if len(stack) == 0 {
		return nil
	}

	levels := make(map[float64]int, len(stack))
	out := make([]schema.Order, 0, len(stack))
	for _, o := range stack {
		if idx, ok := levels[o.Price]; ok {
			out[idx].Quantity += o.Quantity
			continue
		}
		levels[o.Price] = len(out)
		out = append(out, schema.Order{Price: o.Price, Quantity: o.Quantity, Side: side})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if side == schema.PricingSideBid {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out
}
