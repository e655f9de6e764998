package marketdata

import (
	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// DefaultBookDepth is the number of levels per side in one book update.
const DefaultBookDepth = 5

// StageName is the metrics and sink name of the market data stage.
var StageName = schema.EventOrderBook.String()

// Service distributes order book updates keyed on bond id.
type Service struct {
	*bus.Store[string, schema.OrderBook]
	depth int
}

// NewService creates a market data service. depth is the number of levels per
// side a feed batches into one book update.
func NewService(depth int, opts ...bus.Option) *Service {
	if depth <= 0 {
		depth = DefaultBookDepth
	}
	return &Service{
		Store: bus.NewStore(StageName, schema.OrderBook.PersistKey, opts...),
		depth: depth,
	}
}

// BookDepth returns the configured levels per side.
func (s *Service) BookDepth() int {
	return s.depth
}

// BestBidOffer returns the best bid/offer of the stored book for id.
func (s *Service) BestBidOffer(id string) (schema.BidOffer, error) {
	book, ok := s.Get(id)
	if !ok {
		return schema.BidOffer{}, exception.ErrNotFound
	}
	return BestBidOffer(book)
}

// AggregateDepth returns the price-level aggregated view of the stored book for id.
func (s *Service) AggregateDepth(id string) (schema.OrderBook, error) {
	book, ok := s.Get(id)
	if !ok {
		return schema.OrderBook{}, exception.ErrNotFound
	}
	return AggregateDepth(book), nil
}
