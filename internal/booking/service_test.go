package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

var testBond = schema.Bond{ID: "9128283J7", Ticker: "US7Y"}

func order(id string, side schema.PricingSide) schema.ExecutionOrder {
	return schema.ExecutionOrder{
		Bond:            testBond,
		Side:            side,
		OrderID:         id,
		Type:            schema.OrderTypeMarket,
		Price:           99.5,
		VisibleQuantity: 1000,
		HiddenQuantity:  500,
	}
}

func TestBookExecutionInvertsSide(t *testing.T) {
	svc, err := NewService(nil)
	require.NoError(t, err)

	sell, err := svc.BookExecution(order("A", schema.PricingSideBid))
	require.NoError(t, err)
	assert.Equal(t, schema.SideSell, sell.Side)
	assert.Equal(t, int64(1500), sell.Quantity)
	assert.Equal(t, "A", sell.TradeID)
	assert.Equal(t, 99.5, sell.Price)

	buy, err := svc.BookExecution(order("B", schema.PricingSideOffer))
	require.NoError(t, err)
	assert.Equal(t, schema.SideBuy, buy.Side)
}

func TestBookExecutionRoundRobin(t *testing.T) {
	svc, err := NewService(nil)
	require.NoError(t, err)

	var books []string
	for _, id := range []string{"1", "2", "3", "4"} {
		trade, err := svc.BookExecution(order(id, schema.PricingSideBid))
		require.NoError(t, err)
		books = append(books, trade.Book)
	}
	assert.Equal(t, []string{"TRSY2", "TRSY3", "TRSY1", "TRSY2"}, books)
}

func TestBookExecutionUnknownSide(t *testing.T) {
	svc, err := NewService(nil)
	require.NoError(t, err)

	_, err = svc.BookExecution(order("Z", schema.PricingSideUnknown))
	assert.ErrorIs(t, err, exception.ErrOrderUnsupportedSide)
	assert.Equal(t, 0, svc.Len())
}

func TestBookingFansOutOnce(t *testing.T) {
	svc, err := NewService([]string{"ONLY"})
	require.NoError(t, err)

	var seen []schema.Trade
	svc.AddListener(bus.AddFunc[schema.Trade](func(tr schema.Trade) {
		seen = append(seen, tr)
	}))

	svc.Listener().ProcessAdd(order("E1", schema.PricingSideOffer))
	svc.BookTrade(schema.Trade{Bond: testBond, TradeID: "EXT", Book: "ONLY", Quantity: 5, Side: schema.SideBuy})

	require.Len(t, seen, 2)
	assert.Equal(t, "E1", seen[0].TradeID)
	assert.Equal(t, "ONLY", seen[0].Book)

	stored, ok := svc.Get("EXT")
	require.True(t, ok)
	assert.Equal(t, int64(5), stored.Quantity)
}

func TestNewServiceRejectsBlankBook(t *testing.T) {
	_, err := NewService([]string{"A", ""})
	assert.ErrorIs(t, err, exception.ErrInvalidArgument)
}
