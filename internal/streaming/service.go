package streaming

import (
	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
)

// StageName is the metrics and sink name of the streaming stage.
var StageName = schema.EventPriceStream.String()

// Service publishes two-way quotes to the street, keyed on bond id.
type Service struct {
	*bus.Store[string, schema.PriceStream]
}

// NewService creates an empty streaming service.
func NewService(opts ...bus.Option) *Service {
	return &Service{
		Store: bus.NewStore(StageName, schema.PriceStream.PersistKey, opts...),
	}
}

// PublishPrice stores stream and fans it out.
func (s *Service) PublishPrice(stream schema.PriceStream) {
	s.OnMessage(stream)
}

// Listener subscribes the service to the quoting engine.
func (s *Service) Listener() bus.Listener[schema.AlgoStream] {
	return bus.AddFunc[schema.AlgoStream](func(a schema.AlgoStream) {
		s.PublishPrice(a.Stream)
	})
}
