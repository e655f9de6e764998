package feed

import (
	"strings"

	"github.com/yanun0323/errors"

	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// InquiryTarget receives parsed inquiries.
type InquiryTarget interface {
	OnMessage(inq schema.Inquiry)
}

// InquiryFeed parses "inquiryId,bondId,side,quantity,price,state" rows.
type InquiryFeed struct {
	Bonds  BondLookup
	Target InquiryTarget
}

// Name implements Connector.
func (InquiryFeed) Name() string { return "inquiries" }

// HandleRow implements Connector.
func (f InquiryFeed) HandleRow(fields []string) error {
	inq, err := ParseInquiryRow(f.Bonds, fields)
	if err != nil {
		return err
	}
	f.Target.OnMessage(inq)
	return nil
}

// ParseInquiryRow converts an inquiry row.
func ParseInquiryRow(bonds BondLookup, fields []string) (schema.Inquiry, error) {
	if err := checkFields(fields, 6); err != nil {
		return schema.Inquiry{}, err
	}
	id := strings.TrimSpace(fields[0])
	if id == "" {
		return schema.Inquiry{}, errors.Wrap(exception.ErrMalformedRecord, "empty inquiry id")
	}
	bond, err := lookupBond(bonds, fields[1])
	if err != nil {
		return schema.Inquiry{}, err
	}
	side, ok := schema.ParseSide(strings.TrimSpace(fields[2]))
	if !ok {
		return schema.Inquiry{}, errors.Wrap(exception.ErrMalformedRecord, "parse side").With("text", fields[2])
	}
	qty, err := parseQuantity(fields[3])
	if err != nil {
		return schema.Inquiry{}, err
	}
	price, err := parsePrice(fields[4])
	if err != nil {
		return schema.Inquiry{}, err
	}
	state, ok := schema.ParseInquiryState(strings.TrimSpace(fields[5]))
	if !ok {
		return schema.Inquiry{}, errors.Wrap(exception.ErrInquiryUnknownState, "parse state").With("text", fields[5])
	}
	return schema.Inquiry{
		InquiryID: id,
		Bond:      bond,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		State:     state,
	}, nil
}
