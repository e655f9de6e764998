package booking

import (
	"github.com/yanun0323/logs"

	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// DefaultBooks are the trading books executions are booked into.
var DefaultBooks = []string{"TRSY1", "TRSY2", "TRSY3"}

// StageName is the metrics and sink name of the trade booking stage.
var StageName = schema.EventTrade.String()

// Service books trades keyed on trade id. External trades arrive through
// OnMessage; executions are converted by BookExecution.
type Service struct {
	*bus.Store[string, schema.Trade]
	books []string
	count uint64
}

// NewService creates a booking service that assigns executions round-robin
// across books. An empty books list uses DefaultBooks.
func NewService(books []string, opts ...bus.Option) (*Service, error) {
	if len(books) == 0 {
		books = DefaultBooks
	}
	for _, b := range books {
		if b == "" {
			return nil, exception.ErrInvalidArgument
		}
	}
	return &Service{
		Store: bus.NewStore(StageName, schema.Trade.PersistKey, opts...),
		books: append([]string(nil), books...),
	}, nil
}

// BookTrade stores trade and notifies listeners once.
func (s *Service) BookTrade(trade schema.Trade) {
	s.OnMessage(trade)
}

// TradeFromExecution converts an executed order into the trade the desk books
// against it. The desk is the counterparty, so a bid-side execution is a sell.
// The book counter advances before selection.
func (s *Service) TradeFromExecution(order schema.ExecutionOrder) (schema.Trade, error) {
	var side schema.Side
	switch order.Side {
	case schema.PricingSideBid:
		side = schema.SideSell
	case schema.PricingSideOffer:
		side = schema.SideBuy
	default:
		return schema.Trade{}, exception.ErrOrderUnsupportedSide
	}

	s.count++
	book := s.books[s.count%uint64(len(s.books))]

	return schema.Trade{
		Bond:     order.Bond,
		TradeID:  order.OrderID,
		Price:    order.Price,
		Book:     book,
		Quantity: order.TotalQuantity(),
		Side:     side,
	}, nil
}

// BookExecution converts and books order.
func (s *Service) BookExecution(order schema.ExecutionOrder) (schema.Trade, error) {
	trade, err := s.TradeFromExecution(order)
	if err != nil {
		return schema.Trade{}, err
	}
	s.BookTrade(trade)
	return trade, nil
}

// Listener subscribes the service to the execution stage. Orders with an
// unknown side are logged and dropped.
func (s *Service) Listener() bus.Listener[schema.ExecutionOrder] {
	return bus.AddFunc[schema.ExecutionOrder](func(o schema.ExecutionOrder) {
		if _, err := s.BookExecution(o); err != nil {
			logs.Errorf("book execution %s, err: %+v", o.OrderID, err)
		}
	})
}
