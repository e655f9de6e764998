package schema

import (
	"sort"
	"strconv"

	"tradeflow/internal/codec"
)

// Trade is a booked trade. It is never modified after creation.
type Trade struct {
	Bond     Bond
	TradeID  string
	Price    float64
	Book     string
	Quantity int64
	Side     Side
}

// SignedQuantity is positive for buys and negative for sells.
func (t Trade) SignedQuantity() int64 {
	switch t.Side {
	case SideBuy:
		return t.Quantity
	case SideSell:
		return -t.Quantity
	default:
		return 0
	}
}

// PersistKey implements Recordable.
func (t Trade) PersistKey() string {
	return t.TradeID
}

// ToRecord implements Recordable.
func (t Trade) ToRecord() []string {
	return []string{
		t.Bond.ID,
		t.TradeID,
		codec.EncodePrice(t.Price),
		t.Book,
		strconv.FormatInt(t.Quantity, 10),
		t.Side.String(),
	}
}

// Position is a snapshot of net quantity per book for one bond. A Position is
// never mutated after construction; merging returns a new snapshot.
type Position struct {
	Bond  Bond
	books map[string]int64
}

// NewPosition creates an empty position for bond.
func NewPosition(bond Bond) Position {
	return Position{Bond: bond}
}

// NewPositionFromBooks copies books into a new position.
func NewPositionFromBooks(bond Bond, books map[string]int64) Position {
	p := Position{Bond: bond, books: make(map[string]int64, len(books))}
	for book, qty := range books {
		p.books[book] = qty
	}
	return p
}

// Quantity returns the net quantity held in book.
func (p Position) Quantity(book string) int64 {
	return p.books[book]
}

// Aggregate returns the net quantity summed across books.
func (p Position) Aggregate() int64 {
	var total int64
	for _, qty := range p.books {
		total += qty
	}
	return total
}

// Books returns the book names in sorted order.
func (p Position) Books() []string {
	books := make([]string, 0, len(p.books))
	for book := range p.books {
		books = append(books, book)
	}
	sort.Strings(books)
	return books
}

// Positions returns a copy of the per-book quantities.
func (p Position) Positions() map[string]int64 {
	out := make(map[string]int64, len(p.books))
	for book, qty := range p.books {
		out[book] = qty
	}
	return out
}

// Merge sums per-book quantities of p and other into a new position.
// Shared books accumulate and books present on only one side are carried over.
func (p Position) Merge(other Position) Position {
	merged := NewPositionFromBooks(p.Bond, p.books)
	for book, qty := range other.books {
		merged.books[book] += qty
	}
	return merged
}

// PersistKey implements Recordable.
func (p Position) PersistKey() string {
	return p.Bond.ID
}

// ToRecord implements Recordable. Books are emitted in sorted order.
func (p Position) ToRecord() []string {
	books := p.Books()
	rec := make([]string, 0, 1+2*len(books))
	rec = append(rec, p.Bond.ID)
	for _, book := range books {
		rec = append(rec, book, strconv.FormatInt(p.books[book], 10))
	}
	return rec
}
