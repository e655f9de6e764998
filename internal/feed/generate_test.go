package feed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/schema"
)

func testGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Bonds:      []string{testBond.ID},
		Seed:       7,
		Prices:     6,
		MarketData: 20,
		Trades:     6,
		Inquiries:  4,
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, NewGenerator(testGenerateConfig()).WritePrices(&a))
	require.NoError(t, NewGenerator(testGenerateConfig()).WritePrices(&b))
	assert.Equal(t, a.String(), b.String())

	cfg := testGenerateConfig()
	cfg.Seed = 8
	var c bytes.Buffer
	require.NoError(t, NewGenerator(cfg).WritePrices(&c))
	assert.NotEqual(t, a.String(), c.String())
}

func TestGeneratedFeedsParse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewGenerator(testGenerateConfig()).Generate(dir))

	prices := &collector[schema.Price]{}
	stats, err := RunFile(context.Background(), filepath.Join(dir, PricesFile), PriceFeed{Bonds: registry, Target: prices})
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 6, Accepted: 6}, stats)
	for i, p := range prices.got {
		assert.GreaterOrEqual(t, p.Mid, 99.0)
		assert.Less(t, p.Mid, 101.1)
		assert.Equal(t, streamSpreads[i%2], p.Spread)
	}

	books := &collector[schema.OrderBook]{}
	md, err := NewMarketDataFeed(registry, books, 5)
	require.NoError(t, err)
	stats, err = RunFile(context.Background(), filepath.Join(dir, MarketDataFile), md)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), stats.Accepted)
	require.Len(t, books.got, 2)
	assert.Len(t, books.got[0].Bids, 5)
	assert.Len(t, books.got[0].Offers, 5)
	assert.Equal(t, int64(lotSize), books.got[0].Bids[0].Quantity)
	assert.Equal(t, books.got[0].Offers[0].Price-books.got[0].Bids[0].Price, 1.0/128)

	trades := &collector[schema.Trade]{}
	stats, err = RunFile(context.Background(), filepath.Join(dir, TradesFile), TradeFeed{Bonds: registry, Target: trades})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), stats.Accepted)
	assert.Equal(t, "TRSY1", trades.got[0].Book)
	assert.Equal(t, schema.SideBuy, trades.got[0].Side)
	assert.Equal(t, "TRSY2", trades.got[1].Book)
	assert.Equal(t, schema.SideSell, trades.got[1].Side)

	inquiries := &collector[schema.Inquiry]{}
	stats, err = RunFile(context.Background(), filepath.Join(dir, InquiriesFile), InquiryFeed{Bonds: registry, Target: inquiries})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), stats.Accepted)
	for _, inq := range inquiries.got {
		assert.Equal(t, schema.InquiryStateReceived, inq.State)
	}
}

func TestGenerateCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "feeds")
	require.NoError(t, NewGenerator(GenerateConfig{Bonds: []string{testBond.ID}}).Generate(dir))
	for _, name := range []string{PricesFile, MarketDataFile, TradesFile, InquiriesFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	}
}
