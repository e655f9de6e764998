package state

import (
	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
)

// StageName is the metrics and sink name of the position stage.
var StageName = schema.EventPosition.String()

// PositionService nets booked trades into per-book positions keyed on bond id.
type PositionService struct {
	*bus.Store[string, schema.Position]
}

// NewPositionService creates an empty position service.
func NewPositionService(opts ...bus.Option) *PositionService {
	return &PositionService{
		Store: bus.NewStore(StageName, schema.Position.PersistKey, opts...),
	}
}

// AddTrade merges the signed trade quantity into the stored position for the
// trade's bond, replaces the stored snapshot and publishes the merged result.
func (s *PositionService) AddTrade(trade schema.Trade) schema.Position {
	delta := schema.NewPositionFromBooks(trade.Bond, map[string]int64{
		trade.Book: trade.SignedQuantity(),
	})

	current, ok := s.Get(trade.Bond.ID)
	if !ok {
		current = schema.NewPosition(trade.Bond)
	}

	merged := current.Merge(delta)
	s.OnMessage(merged)
	return merged
}

// Listener subscribes the service to the booking stage.
func (s *PositionService) Listener() bus.Listener[schema.Trade] {
	return bus.AddFunc[schema.Trade](func(t schema.Trade) {
		s.AddTrade(t)
	})
}
