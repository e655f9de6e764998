package streaming

import (
	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
)

// DefaultBaseSize is the visible quantity of the smaller quote tier.
const DefaultBaseSize int64 = 10_000_000

// AlgoStageName is the metrics and sink name of the quoting engine.
var AlgoStageName = schema.EventAlgoStream.String()

// AlgoService turns internal prices into two-way quotes. Visible size
// alternates between one and two base sizes on successive prices and hidden
// size is always twice the visible size.
type AlgoService struct {
	*bus.Store[string, schema.AlgoStream]
	baseSize int64
	count    uint64
}

// NewAlgoService creates a quoting engine. A non-positive baseSize uses DefaultBaseSize.
func NewAlgoService(baseSize int64, opts ...bus.Option) *AlgoService {
	if baseSize <= 0 {
		baseSize = DefaultBaseSize
	}
	return &AlgoService{
		Store:    bus.NewStore(AlgoStageName, schema.AlgoStream.PersistKey, opts...),
		baseSize: baseSize,
	}
}

// Quote derives the next two-way quote for price and advances the tier counter.
func (s *AlgoService) Quote(price schema.Price) schema.AlgoStream {
	visible := int64(s.count%2+1) * s.baseSize
	hidden := 2 * visible
	s.count++

	half := price.Spread / 2
	return schema.AlgoStream{Stream: schema.PriceStream{
		Bond: price.Bond,
		Bid: schema.PriceStreamOrder{
			Price:           price.Mid - half,
			VisibleQuantity: visible,
			HiddenQuantity:  hidden,
			Side:            schema.PricingSideBid,
		},
		Offer: schema.PriceStreamOrder{
			Price:           price.Mid + half,
			VisibleQuantity: visible,
			HiddenQuantity:  hidden,
			Side:            schema.PricingSideOffer,
		},
	}}
}

// OnPrice quotes price, stores the decision and notifies listeners.
func (s *AlgoService) OnPrice(price schema.Price) {
	s.OnMessage(s.Quote(price))
}

// Count returns how many quotes have been produced.
func (s *AlgoService) Count() uint64 {
	return s.count
}

// Listener subscribes the engine to the pricing stage.
func (s *AlgoService) Listener() bus.Listener[schema.Price] {
	return bus.AddFunc[schema.Price](s.OnPrice)
}
