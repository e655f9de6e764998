package schema

import (
	"strconv"

	"tradeflow/internal/codec"
)

// ExecutionOrder is an order that can be placed on a venue.
type ExecutionOrder struct {
	Bond            Bond
	Side            PricingSide
	OrderID         string
	Type            OrderType
	Price           float64
	VisibleQuantity int64
	HiddenQuantity  int64
	ParentOrderID   string
	IsChildOrder    bool
}

// TotalQuantity is visible plus hidden quantity.
func (o ExecutionOrder) TotalQuantity() int64 {
	return o.VisibleQuantity + o.HiddenQuantity
}

// PersistKey implements Recordable.
func (o ExecutionOrder) PersistKey() string {
	return o.Bond.ID
}

// ToRecord implements Recordable.
func (o ExecutionOrder) ToRecord() []string {
	child := "NO"
	if o.IsChildOrder {
		child = "YES"
	}
	return []string{
		o.Bond.ID,
		o.Side.String(),
		o.OrderID,
		o.Type.String(),
		codec.EncodePrice(o.Price),
		strconv.FormatInt(o.VisibleQuantity, 10),
		strconv.FormatInt(o.HiddenQuantity, 10),
		o.ParentOrderID,
		child,
	}
}

// AlgoExecution is the execution engine's decision wrapping the order it produced.
type AlgoExecution struct {
	Order ExecutionOrder
}

// PersistKey implements Recordable.
func (a AlgoExecution) PersistKey() string {
	return a.Order.PersistKey()
}

// ToRecord implements Recordable.
func (a AlgoExecution) ToRecord() []string {
	return a.Order.ToRecord()
}
