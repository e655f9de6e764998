package execution

import (
	"tradeflow/internal/bus"
	"tradeflow/internal/marketdata"
	"tradeflow/internal/schema"
)

// DefaultSpreadThreshold is the widest spread, in points, the engine crosses.
const DefaultSpreadThreshold = 1.0 / 128

// AlgoStageName is the metrics and sink name of the execution engine.
var AlgoStageName = schema.EventAlgoExecution.String()

// AlgoConfig tunes the execution engine.
type AlgoConfig struct {
	SpreadThreshold float64
	OrderType       schema.OrderType
	IDs             IDGenerator
}

// AlgoService crosses the spread whenever a book is tight enough, taking the
// bid and the offer side on alternate qualifying books.
type AlgoService struct {
	*bus.Store[string, schema.AlgoExecution]
	cfg   AlgoConfig
	count uint64
}

// NewAlgoService creates an execution engine. Zero fields in cfg take defaults.
func NewAlgoService(cfg AlgoConfig, opts ...bus.Option) *AlgoService {
	if cfg.SpreadThreshold <= 0 {
		cfg.SpreadThreshold = DefaultSpreadThreshold
	}
	if cfg.OrderType == schema.OrderTypeUnknown {
		cfg.OrderType = schema.OrderTypeMarket
	}
	if cfg.IDs == nil {
		cfg.IDs = UUIDGenerator{}
	}
	return &AlgoService{
		Store: bus.NewStore(AlgoStageName, schema.AlgoExecution.PersistKey, opts...),
		cfg:   cfg,
	}
}

// Decide returns the order to send for book. ok is false when either side is
// empty or the spread is wider than the threshold; the alternation counter
// only advances on qualifying books.
func (s *AlgoService) Decide(book schema.OrderBook) (schema.AlgoExecution, bool) {
	bo, err := marketdata.BestBidOffer(book)
	if err != nil {
		return schema.AlgoExecution{}, false
	}
	if bo.Spread() > s.cfg.SpreadThreshold {
		return schema.AlgoExecution{}, false
	}

	take, side := bo.Bid, schema.PricingSideBid
	if s.count%2 == 1 {
		take, side = bo.Offer, schema.PricingSideOffer
	}
	s.count++

	return schema.AlgoExecution{Order: schema.ExecutionOrder{
		Bond:            book.Bond,
		Side:            side,
		OrderID:         s.cfg.IDs.NextID(),
		Type:            s.cfg.OrderType,
		Price:           take.Price,
		VisibleQuantity: take.Quantity,
		HiddenQuantity:  0,
		ParentOrderID:   "",
		IsChildOrder:    false,
	}}, true
}

// OnOrderBook evaluates book and, when it qualifies, stores and publishes the decision.
func (s *AlgoService) OnOrderBook(book schema.OrderBook) {
	decision, ok := s.Decide(book)
	if !ok {
		return
	}
	s.OnMessage(decision)
}

// Count returns the number of orders produced.
func (s *AlgoService) Count() uint64 {
	return s.count
}

// Listener subscribes the engine to the market data stage.
func (s *AlgoService) Listener() bus.Listener[schema.OrderBook] {
	return bus.AddFunc[schema.OrderBook](s.OnOrderBook)
}
