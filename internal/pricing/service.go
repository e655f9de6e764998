package pricing

import (
	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
)

// StageName is the metrics and sink name of the pricing stage.
var StageName = schema.EventPrice.String()

// Service distributes internal mid prices keyed on bond id.
type Service struct {
	*bus.Store[string, schema.Price]
}

// NewService creates an empty pricing service.
func NewService(opts ...bus.Option) *Service {
	return &Service{
		Store: bus.NewStore(StageName, schema.Price.PersistKey, opts...),
	}
}
