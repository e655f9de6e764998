package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/codec"
	"tradeflow/internal/inquiry"
	"tradeflow/internal/marketdata"
	"tradeflow/internal/obs"
	"tradeflow/internal/pricing"
	"tradeflow/internal/risk"
	"tradeflow/internal/schema"
	"tradeflow/internal/state"
)

var bond10y = schema.Bond{ID: "9128283F5", Ticker: "US10Y"}

type fixture struct {
	handler *Handler
	metrics *obs.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.AddBond(bond10y, 0.08))
	require.NoError(t, reg.AddSector("Belly", bond10y.ID))

	m := obs.NewMetrics()
	prices := pricing.NewService()
	prices.OnMessage(schema.NewPriceFromBidOffer(bond10y, codec.MustDecodePrice("99-160"), codec.MustDecodePrice("99-162")))

	books := marketdata.NewService(marketdata.DefaultBookDepth)
	books.OnMessage(schema.OrderBook{
		Bond: bond10y,
		Bids: []schema.Order{
			{Price: codec.MustDecodePrice("99-160"), Quantity: 10, Side: schema.PricingSideBid},
			{Price: codec.MustDecodePrice("99-160"), Quantity: 5, Side: schema.PricingSideBid},
		},
		Offers: []schema.Order{{Price: codec.MustDecodePrice("99-162"), Quantity: 7, Side: schema.PricingSideOffer}},
	})
	books.OnMessage(schema.OrderBook{Bond: schema.Bond{ID: "EMPTY"}})

	positions := state.NewPositionService()
	riskSvc := risk.NewService(reg)
	positions.AddListener(riskSvc.Listener())
	positions.AddTrade(schema.Trade{Bond: bond10y, TradeID: "T1", Book: "TRSY1", Quantity: 100, Side: schema.SideBuy})

	inquiries := inquiry.NewService()
	inquiries.OnMessage(schema.Inquiry{InquiryID: "Q1", Bond: bond10y, Side: schema.SideSell, Quantity: 1_000_000, State: schema.InquiryStateReceived})

	return fixture{
		handler: NewHandler(Deps{
			Prices:    prices,
			Books:     books,
			Positions: positions,
			Risk:      riskSvc,
			Inquiries: inquiries,
			Metrics:   promhttp.HandlerFor(obs.NewRegistry(m), promhttp.HandlerOpts{}),
		}),
		metrics: m,
	}
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestGetPrice(t *testing.T) {
	f := newFixture(t)

	var resp priceResponse
	require.Equal(t, http.StatusOK, get(t, f.handler, "/api/v1/prices/9128283F5", &resp))
	assert.Equal(t, "99-161", resp.Mid)
	assert.Equal(t, "0-002", resp.Spread)

	assert.Equal(t, http.StatusNotFound, get(t, f.handler, "/api/v1/prices/UNKNOWN", nil))
}

func TestGetBooks(t *testing.T) {
	f := newFixture(t)

	var best bidOfferResponse
	require.Equal(t, http.StatusOK, get(t, f.handler, "/api/v1/books/9128283F5/best", &best))
	assert.Equal(t, "99-160", best.Bid.Price)
	assert.Equal(t, int64(10), best.Bid.Quantity)
	assert.Equal(t, "OFFER", best.Offer.Side)
	assert.Equal(t, "0-002", best.Spread)

	var depth bookResponse
	require.Equal(t, http.StatusOK, get(t, f.handler, "/api/v1/books/9128283F5/depth", &depth))
	require.Len(t, depth.Bids, 1)
	assert.Equal(t, int64(15), depth.Bids[0].Quantity)
	require.Len(t, depth.Offers, 1)

	assert.Equal(t, http.StatusNotFound, get(t, f.handler, "/api/v1/books/UNKNOWN/best", nil))
	assert.Equal(t, http.StatusConflict, get(t, f.handler, "/api/v1/books/EMPTY/best", nil))
}

func TestGetPositionAndRisk(t *testing.T) {
	f := newFixture(t)

	var pos positionResponse
	require.Equal(t, http.StatusOK, get(t, f.handler, "/api/v1/positions/9128283F5", &pos))
	assert.Equal(t, map[string]int64{"TRSY1": 100}, pos.Books)
	assert.Equal(t, int64(100), pos.Aggregate)

	var r riskResponse
	require.Equal(t, http.StatusOK, get(t, f.handler, "/api/v1/risk/bonds/9128283F5", &r))
	assert.Equal(t, 0.08, r.PV01)
	assert.Equal(t, int64(100), r.Quantity)

	var bucket riskResponse
	require.Equal(t, http.StatusOK, get(t, f.handler, "/api/v1/risk/buckets/Belly", &bucket))
	assert.Equal(t, "Belly", bucket.Product)
	assert.InDelta(t, 8.0, bucket.PV01, 1e-9)
	assert.Equal(t, int64(1), bucket.Quantity)

	assert.Equal(t, http.StatusNotFound, get(t, f.handler, "/api/v1/risk/buckets/Wings", nil))
	assert.Equal(t, http.StatusNotFound, get(t, f.handler, "/api/v1/positions/UNKNOWN", nil))
}

func TestGetInquiry(t *testing.T) {
	f := newFixture(t)

	var inq inquiryResponse
	require.Equal(t, http.StatusOK, get(t, f.handler, "/api/v1/inquiries/Q1", &inq))
	assert.Equal(t, "Q1", inq.ID)
	assert.Equal(t, "SELL", inq.Side)
	assert.Equal(t, "RECEIVED", inq.State)
}

func TestMetricsAndHealth(t *testing.T) {
	f := newFixture(t)
	f.metrics.AddFeedRows(3, 1)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `tradeflow_feed_rows_total{outcome="accepted"} 3`))

	assert.Equal(t, http.StatusOK, get(t, f.handler, "/healthz", nil))

	empty := NewHandler(Deps{})
	assert.Equal(t, http.StatusNotFound, get(t, empty, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, get(t, empty, "/api/v1/prices/X", nil))
}
