package schema

import (
	"fmt"
	"time"
)

// IDType is the identifier scheme of an instrument.
type IDType uint16

const (
	IDTypeUnknown IDType = iota
	IDTypeCUSIP
	IDTypeISIN
)

func (t IDType) String() string {
	switch t {
	case IDTypeCUSIP:
		return "CUSIP"
	case IDTypeISIN:
		return "ISIN"
	default:
		return "UNKNOWN"
	}
}

// Product is anything risk can be attributed to.
type Product interface {
	ProductID() string
}

// Bond is the static description of a tradable bond.
type Bond struct {
	ID       string
	IDType   IDType
	Ticker   string
	Coupon   float64
	Maturity time.Time
}

// ProductID implements Product.
func (b Bond) ProductID() string {
	return b.ID
}

// BucketedSector is a named group of bonds used only as an aggregation key.
type BucketedSector struct {
	Name  string
	Bonds []Bond
}

// ProductID implements Product.
func (s BucketedSector) ProductID() string {
	return s.Name
}

// Registry stores bond reference data and the PV01-per-unit table.
type Registry struct {
	bonds   []Bond
	pv01    []float64
	byID    map[string]int
	sectors map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]int),
		sectors: make(map[string][]string),
	}
}

// AddBond registers a bond with its PV01 per unit of face.
func (r *Registry) AddBond(bond Bond, pv01 float64) error {
	if bond.ID == "" {
		return fmt.Errorf("bond id is empty")
	}
	if _, ok := r.byID[bond.ID]; ok {
		return fmt.Errorf("bond already exists: %s", bond.ID)
	}
	if bond.IDType == IDTypeUnknown {
		bond.IDType = IDTypeCUSIP
	}
	r.byID[bond.ID] = len(r.bonds)
	r.bonds = append(r.bonds, bond)
	r.pv01 = append(r.pv01, pv01)
	return nil
}

// AddSector registers a named bucket of bond ids.
func (r *Registry) AddSector(name string, ids ...string) error {
	if name == "" {
		return fmt.Errorf("sector name is empty")
	}
	if _, ok := r.sectors[name]; ok {
		return fmt.Errorf("sector already exists: %s", name)
	}
	for _, id := range ids {
		if _, ok := r.byID[id]; !ok {
			return fmt.Errorf("sector %s: bond not found: %s", name, id)
		}
	}
	r.sectors[name] = append([]string(nil), ids...)
	return nil
}

// Bond returns the bond by id.
func (r *Registry) Bond(id string) (Bond, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Bond{}, false
	}
	return r.bonds[idx], true
}

// PV01 returns the risk sensitivity per unit for a bond.
func (r *Registry) PV01(id string) (float64, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return 0, false
	}
	return r.pv01[idx], true
}

// Sector resolves a named bucket into its bonds.
func (r *Registry) Sector(name string) (BucketedSector, bool) {
	ids, ok := r.sectors[name]
	if !ok {
		return BucketedSector{}, false
	}
	sector := BucketedSector{Name: name, Bonds: make([]Bond, 0, len(ids))}
	for _, id := range ids {
		sector.Bonds = append(sector.Bonds, r.bonds[r.byID[id]])
	}
	return sector, true
}

// BondCount returns the number of registered bonds.
func (r *Registry) BondCount() int {
	return len(r.bonds)
}

// BondAt returns the bond by zero-based registration index.
func (r *Registry) BondAt(index int) (Bond, bool) {
	if index < 0 || index >= len(r.bonds) {
		return Bond{}, false
	}
	return r.bonds[index], true
}
