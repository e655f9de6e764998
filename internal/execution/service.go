package execution

import (
	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
)

// StageName is the metrics and sink name of the execution stage.
var StageName = schema.EventExecution.String()

// Service sends execution orders to the venue, keyed on bond id.
type Service struct {
	*bus.Store[string, schema.ExecutionOrder]
}

// NewService creates an empty execution service.
func NewService(opts ...bus.Option) *Service {
	return &Service{
		Store: bus.NewStore(StageName, schema.ExecutionOrder.PersistKey, opts...),
	}
}

// ExecuteOrder stores order and fans it out.
func (s *Service) ExecuteOrder(order schema.ExecutionOrder) {
	s.OnMessage(order)
}

// Listener subscribes the service to the execution engine.
func (s *Service) Listener() bus.Listener[schema.AlgoExecution] {
	return bus.AddFunc[schema.AlgoExecution](func(a schema.AlgoExecution) {
		s.ExecuteOrder(a.Order)
	})
}
