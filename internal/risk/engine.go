package risk

import (
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// StageName is the metrics and sink name of the risk stage.
var StageName = schema.EventRisk.String()

// Reference provides the static PV01-per-unit table and the named sectors.
type Reference interface {
	PV01(id string) (float64, bool)
	Sector(name string) (schema.BucketedSector, bool)
}

// Service holds the PV01 of every bond position, keyed on bond id.
type Service struct {
	*bus.Store[string, schema.PV01[schema.Bond]]
	ref Reference
}

// NewService creates a risk service backed by ref.
func NewService(ref Reference, opts ...bus.Option) *Service {
	return &Service{
		Store: bus.NewStore(StageName, schema.PV01[schema.Bond].PersistKey, opts...),
		ref:   ref,
	}
}

// AddPosition replaces the risk of the position's bond and publishes it. The
// quantity is the position aggregated across books.
func (s *Service) AddPosition(p schema.Position) (schema.PV01[schema.Bond], error) {
	r, err := s.riskOf(p)
	if err != nil {
		return schema.PV01[schema.Bond]{}, errors.Wrap(err, "add position")
	}
	s.OnMessage(r)
	return r, nil
}

// Restore stores the risk of a recovered position without notifying listeners.
func (s *Service) Restore(p schema.Position) (schema.PV01[schema.Bond], error) {
	r, err := s.riskOf(p)
	if err != nil {
		return schema.PV01[schema.Bond]{}, errors.Wrap(err, "restore position")
	}
	s.Put(r)
	return r, nil
}

func (s *Service) riskOf(p schema.Position) (schema.PV01[schema.Bond], error) {
	pv01, ok := s.ref.PV01(p.Bond.ID)
	if !ok {
		return schema.PV01[schema.Bond]{}, errors.Wrap(exception.ErrUnknownInstrument, "pv01").With("bond", p.Bond.ID)
	}
	return schema.PV01[schema.Bond]{
		Product:  p.Bond,
		PV01:     pv01,
		Quantity: p.Aggregate(),
	}, nil
}

// BucketedRisk sums pv01*quantity over every bond of sector that has stored
// risk. The result carries quantity 1. Nothing is stored or published.
func (s *Service) BucketedRisk(sector schema.BucketedSector) schema.PV01[schema.BucketedSector] {
	total := decimal.Zero
	for _, bond := range sector.Bonds {
		r, ok := s.Get(bond.ID)
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(r.PV01).Mul(decimal.NewFromInt(r.Quantity)))
	}
	return schema.PV01[schema.BucketedSector]{
		Product:  sector,
		PV01:     total.InexactFloat64(),
		Quantity: 1,
	}
}

// BucketedRiskByName resolves a configured sector and computes its risk.
func (s *Service) BucketedRiskByName(name string) (schema.PV01[schema.BucketedSector], error) {
	sector, ok := s.ref.Sector(name)
	if !ok {
		return schema.PV01[schema.BucketedSector]{}, errors.Wrap(exception.ErrNotFound, "bucketed risk").With("sector", name)
	}
	return s.BucketedRisk(sector), nil
}

// Listener subscribes the service to the position stage. Positions in bonds
// without a PV01 entry are logged and dropped.
func (s *Service) Listener() bus.Listener[schema.Position] {
	return bus.AddFunc[schema.Position](func(p schema.Position) {
		if _, err := s.AddPosition(p); err != nil {
			logs.Errorf("add position, err: %+v", err)
		}
	})
}
