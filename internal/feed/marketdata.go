package feed

import (
	"strings"

	"github.com/yanun0323/errors"

	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// OrderBookTarget receives assembled order books.
type OrderBookTarget interface {
	OnMessage(b schema.OrderBook)
}

// MarketDataFeed parses "bondId,price,quantity,side" rows and emits one
// order book per bond every 2*depth rows of that bond.
type MarketDataFeed struct {
	bonds   BondLookup
	target  OrderBookTarget
	batch   int
	pending map[string]*schema.OrderBook
	counts  map[string]int
}

// NewMarketDataFeed creates a market depth connector for depth levels per side.
func NewMarketDataFeed(bonds BondLookup, target OrderBookTarget, depth int) (*MarketDataFeed, error) {
	if depth <= 0 {
		return nil, errors.Wrapf(exception.ErrInvalidBookDepth, "depth: %d", depth)
	}
	return &MarketDataFeed{
		bonds:   bonds,
		target:  target,
		batch:   2 * depth,
		pending: make(map[string]*schema.OrderBook),
		counts:  make(map[string]int),
	}, nil
}

// Name implements Connector.
func (*MarketDataFeed) Name() string { return "marketdata" }

// HandleRow implements Connector.
func (f *MarketDataFeed) HandleRow(fields []string) error {
	if err := checkFields(fields, 4); err != nil {
		return err
	}
	bond, err := lookupBond(f.bonds, fields[0])
	if err != nil {
		return err
	}
	price, err := parsePrice(fields[1])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(fields[2])
	if err != nil {
		return err
	}
	side, ok := schema.ParsePricingSide(strings.TrimSpace(fields[3]))
	if !ok {
		return errors.Wrap(exception.ErrMalformedRecord, "parse side").With("text", fields[3])
	}

	book, ok := f.pending[bond.ID]
	if !ok {
		book = &schema.OrderBook{Bond: bond}
		f.pending[bond.ID] = book
	}
	order := schema.Order{Price: price, Quantity: qty, Side: side}
	if side == schema.PricingSideBid {
		book.Bids = append(book.Bids, order)
	} else {
		book.Offers = append(book.Offers, order)
	}

	f.counts[bond.ID]++
	if f.counts[bond.ID] < f.batch {
		return nil
	}
	delete(f.pending, bond.ID)
	delete(f.counts, bond.ID)
	f.target.OnMessage(*book)
	return nil
}

// Pending returns the number of bonds with a partially assembled book.
func (f *MarketDataFeed) Pending() int {
	return len(f.pending)
}
