package gui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/schema"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestSinkThrottles(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	var lines []string
	sink := NewSink(Config{
		Now:   clock.Now,
		Write: func(line string) { lines = append(lines, line) },
	})
	price := schema.NewPriceFromBidOffer(schema.Bond{ID: "912828M80"}, 99.5, 99.5+1.0/128)

	listener := sink.Listener()
	listener.ProcessAdd(price)
	clock.Advance(100 * time.Millisecond)
	listener.ProcessAdd(price)
	clock.Advance(199 * time.Millisecond)
	listener.ProcessAdd(price)
	clock.Advance(time.Millisecond)
	listener.ProcessAdd(price)

	require.Len(t, lines, 2)
	assert.Equal(t, "2026-01-02 03:04:05.000 912828M80 99-161 0-002", lines[0])
	assert.Equal(t, "2026-01-02 03:04:05.300 912828M80 99-161 0-002", lines[1])
	assert.Equal(t, uint64(2), sink.Emitted())
	assert.Equal(t, uint64(2), sink.Dropped())
}

func TestSinkCustomThrottle(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var count int
	sink := NewSink(Config{
		Throttle: time.Second,
		Now:      clock.Now,
		Write:    func(string) { count++ },
	})
	price := schema.Price{Bond: schema.Bond{ID: "X"}, Mid: 100}

	assert.True(t, sink.OnPrice(price))
	clock.Advance(500 * time.Millisecond)
	assert.False(t, sink.OnPrice(price))
	clock.Advance(500 * time.Millisecond)
	assert.True(t, sink.OnPrice(price))
	assert.Equal(t, 2, count)
}
