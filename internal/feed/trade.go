package feed

import (
	"strings"

	"github.com/yanun0323/errors"

	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// TradeTarget receives parsed trades.
type TradeTarget interface {
	OnMessage(t schema.Trade)
}

// TradeFeed parses "bondId,tradeId,price,book,quantity,side" rows.
type TradeFeed struct {
	Bonds  BondLookup
	Target TradeTarget
}

// Name implements Connector.
func (TradeFeed) Name() string { return "trades" }

// HandleRow implements Connector.
func (f TradeFeed) HandleRow(fields []string) error {
	t, err := ParseTradeRow(f.Bonds, fields)
	if err != nil {
		return err
	}
	f.Target.OnMessage(t)
	return nil
}

// ParseTradeRow converts a trade row.
func ParseTradeRow(bonds BondLookup, fields []string) (schema.Trade, error) {
	if err := checkFields(fields, 6); err != nil {
		return schema.Trade{}, err
	}
	bond, err := lookupBond(bonds, fields[0])
	if err != nil {
		return schema.Trade{}, err
	}
	id := strings.TrimSpace(fields[1])
	book := strings.TrimSpace(fields[3])
	if id == "" || book == "" {
		return schema.Trade{}, errors.Wrap(exception.ErrMalformedRecord, "empty trade id or book")
	}
	price, err := parsePrice(fields[2])
	if err != nil {
		return schema.Trade{}, err
	}
	qty, err := parseQuantity(fields[4])
	if err != nil {
		return schema.Trade{}, err
	}
	side, ok := schema.ParseSide(strings.TrimSpace(fields[5]))
	if !ok {
		return schema.Trade{}, errors.Wrap(exception.ErrMalformedRecord, "parse side").With("text", fields[5])
	}
	return schema.Trade{
		Bond:     bond,
		TradeID:  id,
		Price:    price,
		Book:     book,
		Quantity: qty,
		Side:     side,
	}, nil
}
