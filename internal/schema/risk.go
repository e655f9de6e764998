package schema

import "strconv"

// PV01 is the risk of a product: sensitivity per unit and the quantity held.
type PV01[P Product] struct {
	Product  P
	PV01     float64
	Quantity int64
}

// PersistKey implements Recordable.
func (r PV01[P]) PersistKey() string {
	return r.Product.ProductID()
}

// ToRecord implements Recordable.
func (r PV01[P]) ToRecord() []string {
	return []string{
		r.Product.ProductID(),
		strconv.FormatFloat(r.PV01, 'f', -1, 64),
		strconv.FormatInt(r.Quantity, 10),
	}
}
