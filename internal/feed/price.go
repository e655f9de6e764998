package feed

import (
	"tradeflow/internal/schema"
)

// PriceTarget receives parsed prices.
type PriceTarget interface {
	OnMessage(p schema.Price)
}

// PriceFeed parses "bondId,bid,offer" rows.
type PriceFeed struct {
	Bonds  BondLookup
	Target PriceTarget
}

// Name implements Connector.
func (PriceFeed) Name() string { return "price" }

// HandleRow implements Connector.
func (f PriceFeed) HandleRow(fields []string) error {
	p, err := ParsePriceRow(f.Bonds, fields)
	if err != nil {
		return err
	}
	f.Target.OnMessage(p)
	return nil
}

// ParsePriceRow converts a price row into a mid/spread price.
func ParsePriceRow(bonds BondLookup, fields []string) (schema.Price, error) {
	if err := checkFields(fields, 3); err != nil {
		return schema.Price{}, err
	}
	bond, err := lookupBond(bonds, fields[0])
	if err != nil {
		return schema.Price{}, err
	}
	bid, err := parsePrice(fields[1])
	if err != nil {
		return schema.Price{}, err
	}
	offer, err := parsePrice(fields[2])
	if err != nil {
		return schema.Price{}, err
	}
	return schema.NewPriceFromBidOffer(bond, bid, offer), nil
}
