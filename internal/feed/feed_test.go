package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/codec"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

var testBond = schema.Bond{ID: "9128283H1", Ticker: "US2Y"}

type bonds map[string]schema.Bond

func (b bonds) Bond(id string) (schema.Bond, bool) {
	bond, ok := b[id]
	return bond, ok
}

var registry = bonds{testBond.ID: testBond}

type collector[V any] struct {
	got []V
}

func (c *collector[V]) OnMessage(v V) {
	c.got = append(c.got, v)
}

func TestPriceFeed(t *testing.T) {
	target := &collector[schema.Price]{}
	input := strings.Join([]string{
		"9128283H1,99-160,99-162",
		"# comment",
		"9128283H1,99-16x,99-162",
		"UNKNOWN,99-160,99-162",
		"9128283H1,99-160",
		"9128283H1, 100-000, 100-01+",
	}, "\n")

	stats, err := Run(context.Background(), strings.NewReader(input), PriceFeed{Bonds: registry, Target: target})
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 5, Accepted: 2, Skipped: 3}, stats)

	require.Len(t, target.got, 2)
	assert.Equal(t, codec.MustDecodePrice("99-161"), target.got[0].Mid)
	assert.Equal(t, 1.0/128, target.got[0].Spread)
	assert.Equal(t, 100+12.0/256/2, target.got[1].Mid)
}

func TestParsePriceRowErrors(t *testing.T) {
	_, err := ParsePriceRow(registry, []string{"9128283H1"})
	assert.ErrorIs(t, err, exception.ErrFieldCount)

	_, err = ParsePriceRow(registry, []string{"nope", "99-000", "99-000"})
	assert.ErrorIs(t, err, exception.ErrUnknownInstrument)

	_, err = ParsePriceRow(registry, []string{"9128283H1", "99-999", "99-000"})
	assert.ErrorIs(t, err, exception.ErrMalformedPrice)
}

func TestMarketDataFeedBatches(t *testing.T) {
	target := &collector[schema.OrderBook]{}
	feed, err := NewMarketDataFeed(registry, target, 2)
	require.NoError(t, err)

	rows := [][]string{
		{"9128283H1", "99-160", "1000", "BID"},
		{"9128283H1", "99-200", "500", "BID"},
		{"9128283H1", "99-240", "700", "OFFER"},
	}
	for _, r := range rows {
		require.NoError(t, feed.HandleRow(r))
	}
	assert.Empty(t, target.got)
	assert.Equal(t, 1, feed.Pending())

	require.NoError(t, feed.HandleRow([]string{"9128283H1", "99-250", "300", "OFFER"}))
	require.Len(t, target.got, 1)
	assert.Zero(t, feed.Pending())

	book := target.got[0]
	assert.Equal(t, testBond, book.Bond)
	require.Len(t, book.Bids, 2)
	require.Len(t, book.Offers, 2)
	assert.Equal(t, schema.Order{Price: codec.MustDecodePrice("99-200"), Quantity: 500, Side: schema.PricingSideBid}, book.Bids[1])

	assert.ErrorIs(t, feed.HandleRow([]string{"9128283H1", "99-250", "300", "ASK"}), exception.ErrMalformedRecord)
	assert.ErrorIs(t, feed.HandleRow([]string{"9128283H1", "99-250", "-3", "BID"}), exception.ErrMalformedRecord)

	_, err = NewMarketDataFeed(registry, target, 0)
	assert.ErrorIs(t, err, exception.ErrInvalidBookDepth)
}

func TestTradeFeed(t *testing.T) {
	target := &collector[schema.Trade]{}
	feed := TradeFeed{Bonds: registry, Target: target}

	require.NoError(t, feed.HandleRow([]string{"9128283H1", "T1", "99-000", "TRSY1", "1000000", "BUY"}))
	require.Len(t, target.got, 1)
	assert.Equal(t, schema.Trade{
		Bond:     testBond,
		TradeID:  "T1",
		Price:    99,
		Book:     "TRSY1",
		Quantity: 1_000_000,
		Side:     schema.SideBuy,
	}, target.got[0])

	assert.ErrorIs(t, feed.HandleRow([]string{"9128283H1", "T1", "99-000", "TRSY1", "1", "HOLD"}), exception.ErrMalformedRecord)
	assert.ErrorIs(t, feed.HandleRow([]string{"9128283H1", "", "99-000", "TRSY1", "1", "BUY"}), exception.ErrMalformedRecord)
}

func TestInquiryFeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inquiries.txt")
	content := "Q1,9128283H1,SELL,2000000,99-31+,RECEIVED\nQ2,9128283H1,BUY,1,100-000,PENDING\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	target := &collector[schema.Inquiry]{}
	stats, err := RunFile(context.Background(), path, InquiryFeed{Bonds: registry, Target: target})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Accepted)
	assert.Equal(t, uint64(1), stats.Skipped)

	require.Len(t, target.got, 1)
	assert.Equal(t, "Q1", target.got[0].InquiryID)
	assert.Equal(t, schema.InquiryStateReceived, target.got[0].State)
	assert.Equal(t, codec.MustDecodePrice("99-31+"), target.got[0].Price)

	_, err = RunFile(context.Background(), filepath.Join(t.TempDir(), "missing"), InquiryFeed{})
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := &collector[schema.Price]{}
	_, err := Run(ctx, strings.NewReader("9128283H1,99-160,99-162\n"), PriceFeed{Bonds: registry, Target: target})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, target.got)
}
