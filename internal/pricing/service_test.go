package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
)

func TestServiceLatestPriceWins(t *testing.T) {
	bond := schema.Bond{ID: "912828M80", Ticker: "US5Y"}
	svc := NewService()

	var got []float64
	svc.AddListener(bus.AddFunc[schema.Price](func(p schema.Price) {
		got = append(got, p.Mid)
	}))

	svc.OnMessage(schema.NewPriceFromBidOffer(bond, 99.5, 99.75))
	svc.OnMessage(schema.NewPriceFromBidOffer(bond, 100, 100.25))

	assert.Equal(t, []float64{99.625, 100.125}, got)

	p, ok := svc.Get(bond.ID)
	require.True(t, ok)
	assert.Equal(t, 100.125, p.Mid)
	assert.Equal(t, 0.25, p.Spread)
	assert.Equal(t, 1, svc.Len())
}
