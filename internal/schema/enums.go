package schema

// PricingSide is the side of a quote or market data order.
type PricingSide uint16

const (
	PricingSideUnknown PricingSide = iota
	PricingSideBid
	PricingSideOffer
)

func (s PricingSide) String() string {
	switch s {
	case PricingSideBid:
		return "BID"
	case PricingSideOffer:
		return "OFFER"
	default:
		return "UNKNOWN"
	}
}

// ParsePricingSide parses "BID" or "OFFER".
func ParsePricingSide(s string) (PricingSide, bool) {
	switch s {
	case "BID":
		return PricingSideBid, true
	case "OFFER":
		return PricingSideOffer, true
	default:
		return PricingSideUnknown, false
	}
}

// Side is the direction of a trade or inquiry.
type Side uint16

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// ParseSide parses "BUY" or "SELL".
func ParseSide(s string) (Side, bool) {
	switch s {
	case "BUY":
		return SideBuy, true
	case "SELL":
		return SideSell, true
	default:
		return SideUnknown, false
	}
}

// OrderType describes an execution order type.
type OrderType uint16

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeFOK
	OrderTypeIOC
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStop
)

var orderTypeNames = [...]string{
	OrderTypeUnknown: "UNKNOWN",
	OrderTypeFOK:     "FOK",
	OrderTypeIOC:     "IOC",
	OrderTypeMarket:  "MARKET",
	OrderTypeLimit:   "LIMIT",
	OrderTypeStop:    "STOP",
}

func (t OrderType) String() string {
	if int(t) < len(orderTypeNames) {
		return orderTypeNames[t]
	}
	return orderTypeNames[OrderTypeUnknown]
}

// ParseOrderType parses the upper-case order type name.
func ParseOrderType(s string) (OrderType, bool) {
	for i, name := range orderTypeNames {
		if i != int(OrderTypeUnknown) && name == s {
			return OrderType(i), true
		}
	}
	return OrderTypeUnknown, false
}

// InquiryState tracks the lifecycle of a customer inquiry.
type InquiryState uint16

const (
	InquiryStateUnknown InquiryState = iota
	InquiryStateReceived
	InquiryStateQuoted
	InquiryStateDone
	InquiryStateRejected
	InquiryStateCustomerRejected
)

var inquiryStateNames = [...]string{
	InquiryStateUnknown:          "UNKNOWN",
	InquiryStateReceived:         "RECEIVED",
	InquiryStateQuoted:           "QUOTED",
	InquiryStateDone:             "DONE",
	InquiryStateRejected:         "REJECTED",
	InquiryStateCustomerRejected: "CUSTOMER_REJECTED",
}

func (s InquiryState) String() string {
	if int(s) < len(inquiryStateNames) {
		return inquiryStateNames[s]
	}
	return inquiryStateNames[InquiryStateUnknown]
}

// ParseInquiryState parses the upper-case state name.
func ParseInquiryState(s string) (InquiryState, bool) {
	for i, name := range inquiryStateNames {
		if i != int(InquiryStateUnknown) && name == s {
			return InquiryState(i), true
		}
	}
	return InquiryStateUnknown, false
}
