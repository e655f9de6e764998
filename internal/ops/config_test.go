package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

func TestDefault(t *testing.T) {
	loaded := Default()
	assert.Equal(t, 6, loaded.Registry.BondCount())

	pv01, ok := loaded.Registry.PV01("912810RZ3")
	require.True(t, ok)
	assert.Equal(t, 0.15013155, pv01)

	bond, ok := loaded.Registry.Bond("9128283F5")
	require.True(t, ok)
	assert.Equal(t, "US10Y", bond.Ticker)
	assert.Equal(t, time.Date(2027, 12, 15, 0, 0, 0, 0, time.UTC), bond.Maturity)

	belly, ok := loaded.Registry.Sector("Belly")
	require.True(t, ok)
	assert.Len(t, belly.Bonds, 3)

	assert.True(t, loaded.AutoQuote)
	assert.Equal(t, []string{SinkFile}, loaded.History.Sinks)
	assert.Equal(t, 5, loaded.Feeds.BookDepth)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{
		"instruments": [{"id": "X", "ticker": "XT", "coupon": 0.01, "maturity": "2030-01-31", "pv01": 0.5}],
		"sectors": [{"name": "All", "bonds": ["X"]}],
		"quoting": {"baseSize": 5000000},
		"execution": {"spreadThreshold": "0-004", "orderType": "limit", "idPrefix": "EX"},
		"booking": {"books": ["A", "B"]},
		"inquiry": {"autoQuote": false},
		"gui": {"throttleMs": 50},
		"history": {"sinks": ["file", "redis"], "redis": {"addr": "localhost:6379"}},
		"feeds": {"prices": "p.txt", "bookDepth": 3},
		"http": {"addr": ":8080"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, loaded.Registry.BondCount())
	_, ok := loaded.Registry.Sector("All")
	assert.True(t, ok)
	assert.Equal(t, int64(5_000_000), loaded.BaseSize)
	assert.Equal(t, 1.0/64, loaded.SpreadThreshold)
	assert.Equal(t, schema.OrderTypeLimit, loaded.OrderType)
	assert.Equal(t, "EX", loaded.IDPrefix)
	assert.Equal(t, []string{"A", "B"}, loaded.Books)
	assert.False(t, loaded.AutoQuote)
	assert.Equal(t, 50*time.Millisecond, loaded.GUIThrottle)
	assert.Equal(t, "localhost:6379", loaded.History.Redis.Addr)
	assert.Equal(t, "output", loaded.History.Dir)
	assert.Equal(t, 3, loaded.Feeds.BookDepth)
	assert.Equal(t, ":8080", loaded.HTTPAddr)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{"history": {"sinks": ["tape"]}}`))
	assert.ErrorIs(t, err, exception.ErrArgumentUnsupported)

	_, err = Parse([]byte(`{"execution": {"orderType": "ICEBERG"}}`))
	assert.ErrorIs(t, err, exception.ErrOrderUnsupportedType)

	_, err = Parse([]byte(`{"execution": {"spreadThreshold": "1/128"}}`))
	assert.ErrorIs(t, err, exception.ErrMalformedPrice)

	_, err = Parse([]byte(`{"instruments": [{"id": "X", "maturity": "31/01/2030"}]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"feeds": {"bookDepth": -1}}`))
	assert.ErrorIs(t, err, exception.ErrInvalidBookDepth)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
