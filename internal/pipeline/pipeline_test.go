package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/execution"
	"tradeflow/internal/gui"
	"tradeflow/internal/history"
	"tradeflow/internal/obs"
	"tradeflow/internal/ops"
	"tradeflow/internal/recorder"
	"tradeflow/internal/schema"
	"tradeflow/internal/state"
)

const (
	bond2y = "9128283H1"
	bond3y = "9128283L2"
)

type recordingSink struct {
	mu      sync.Mutex
	records []history.Record
	closed  bool
}

func (s *recordingSink) Write(_ context.Context, rec history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func (s *recordingSink) count(t schema.EventType) int {
	n := 0
	for _, rec := range s.records {
		if rec.Type == t {
			n++
		}
	}
	return n
}

func writeFeeds(t *testing.T) ops.FeedsConfig {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, lines ...string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
		return path
	}
	return ops.FeedsConfig{
		Prices: write("prices.txt",
			bond2y+",99-000,99-002",
			bond2y+",99-001,99-003",
		),
		MarketData: write("marketdata.txt",
			bond2y+",99-160,1000000,BID",
			bond2y+",99-162,1000000,OFFER",
			bond2y+",abc,1,BID",
			bond2y+",99-160,5000000,BID",
			bond2y+",99-170,5000000,OFFER",
			bond2y+",99-160,3000000,BID",
			bond2y+",99-162,3000000,OFFER",
		),
		Trades: write("trades.txt",
			bond2y+",T1,99-000,TRSY1,500000,BUY",
		),
		Inquiries: write("inquiries.txt",
			"Q1,"+bond2y+",BUY,1000000,99-000,RECEIVED",
		),
		BookDepth: 1,
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := ops.Default()
	cfg.Feeds = writeFeeds(t)

	sink := &recordingSink{}
	metrics := obs.NewMetrics()
	var lines []string
	now := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	p, err := New(Options{
		Config:  cfg,
		Sink:    sink,
		Metrics: metrics,
		GUI: gui.Config{
			Now:   func() time.Time { return now },
			Write: func(line string) { lines = append(lines, line) },
		},
		IDs: execution.NewSequenceGenerator("EX", 0),
	})
	require.NoError(t, err)

	results, err := p.RunFeeds(context.Background(), cfg.Feeds)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "marketdata", results[1].Name)
	assert.Equal(t, uint64(6), results[1].Stats.Accepted)
	assert.Equal(t, uint64(1), results[1].Stats.Skipped)

	// both prices arrive inside one throttle window
	assert.Len(t, lines, 1)
	assert.Equal(t, uint64(2), p.AlgoStreaming.Count())

	// the wide book is ignored, the tight ones alternate bid and offer
	assert.Equal(t, uint64(2), p.AlgoExecution.Count())
	last, ok := p.Execution.Get(bond2y)
	require.True(t, ok)
	assert.Equal(t, "EX2", last.OrderID)
	assert.Equal(t, schema.PricingSideOffer, last.Side)

	sold, ok := p.Booking.Get("EX1")
	require.True(t, ok)
	assert.Equal(t, schema.SideSell, sold.Side)
	assert.Equal(t, "TRSY2", sold.Book)
	bought, ok := p.Booking.Get("EX2")
	require.True(t, ok)
	assert.Equal(t, schema.SideBuy, bought.Side)
	assert.Equal(t, "TRSY3", bought.Book)

	pos, ok := p.Positions.Get(bond2y)
	require.True(t, ok)
	assert.Equal(t, map[string]int64{
		"TRSY1": 500_000,
		"TRSY2": -1_000_000,
		"TRSY3": 3_000_000,
	}, pos.Positions())

	r, ok := p.Risk.Get(bond2y)
	require.True(t, ok)
	assert.Equal(t, int64(2_500_000), r.Quantity)

	bucket, err := p.Risk.BucketedRiskByName("FrontEnd")
	require.NoError(t, err)
	assert.InDelta(t, 0.01948992*2_500_000, bucket.PV01, 1e-6)

	inq, ok := p.Inquiries.Get("Q1")
	require.True(t, ok)
	assert.Equal(t, schema.InquiryStateDone, inq.State)

	assert.Equal(t, 2, sink.count(schema.EventPriceStream))
	assert.Equal(t, 2, sink.count(schema.EventExecution))
	assert.Equal(t, 3, sink.count(schema.EventPosition))
	assert.Equal(t, 3, sink.count(schema.EventRisk))
	assert.Equal(t, 1, sink.count(schema.EventInquiry))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(10), snap.FeedAccepted)
	assert.Equal(t, uint64(1), snap.FeedSkipped)
	assert.Equal(t, uint64(2), snap.Stages[schema.EventExecution].Published)

	require.NoError(t, p.Close())
	assert.True(t, sink.closed)
}

func TestRecoverRestoresRisk(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "positions.json")
	require.NoError(t, state.WriteSnapshot(snapPath, state.Snapshot{
		LastEventTs: 100,
		Positions:   []state.PositionEntry{{Bond: bond2y, Book: "TRSY1", Qty: 1_000_000}},
	}))

	journalDir := filepath.Join(dir, "journal")
	w, err := recorder.NewWriter(recorder.Config{Dir: journalDir, QueueSize: 16})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.AppendFields(schema.EventPosition, time.Unix(0, 200), []string{bond3y, "TRSY2", "-400000"}))
	require.NoError(t, w.Close())

	sink := &recordingSink{}
	p, err := New(Options{Config: ops.Default(), Sink: sink})
	require.NoError(t, err)

	result, err := p.Recover(context.Background(), state.RecoverConfig{JournalDir: journalDir, SnapshotPath: snapPath})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)

	r2, ok := p.Risk.Get(bond2y)
	require.True(t, ok)
	assert.Equal(t, int64(1_000_000), r2.Quantity)
	r3, ok := p.Risk.Get(bond3y)
	require.True(t, ok)
	assert.Equal(t, int64(-400_000), r3.Quantity)

	bucket, err := p.Risk.BucketedRiskByName("FrontEnd")
	require.NoError(t, err)
	assert.InDelta(t, 0.01948992*1_000_000-0.02865304*400_000, bucket.PV01, 1e-6)

	// recovered state is not written to history again
	assert.Empty(t, sink.records)

	// a new trade nets on top of the recovered position and republishes risk
	p.Booking.BookTrade(schema.Trade{
		Bond:     mustBond(t, p, bond2y),
		TradeID:  "T9",
		Book:     "TRSY1",
		Quantity: 250_000,
		Side:     schema.SideSell,
	})
	r2, ok = p.Risk.Get(bond2y)
	require.True(t, ok)
	assert.Equal(t, int64(750_000), r2.Quantity)
	assert.Equal(t, 1, sink.count(schema.EventRisk))
	require.NoError(t, p.Close())
}

func mustBond(t *testing.T, p *Pipeline, id string) schema.Bond {
	t.Helper()
	bond, ok := p.Registry.Bond(id)
	require.True(t, ok)
	return bond
}

func TestPipelineWithoutAutoQuote(t *testing.T) {
	cfg := ops.Default()
	cfg.AutoQuote = false

	p, err := New(Options{Config: cfg})
	require.NoError(t, err)
	assert.Nil(t, p.InquiryHistory)

	p.Inquiries.OnMessage(schema.Inquiry{InquiryID: "Q9", State: schema.InquiryStateReceived})
	inq, ok := p.Inquiries.Get("Q9")
	require.True(t, ok)
	assert.Equal(t, schema.InquiryStateReceived, inq.State)
	assert.NoError(t, p.Close())
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	cfg := ops.Default()
	cfg.Books = []string{"TRSY1", ""}
	_, err = New(Options{Config: cfg})
	assert.Error(t, err)
}

func TestRunFeedsMissingFile(t *testing.T) {
	p, err := New(Options{Config: ops.Default()})
	require.NoError(t, err)

	results, err := p.RunFeeds(context.Background(), ops.FeedsConfig{Prices: filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
	assert.Len(t, results, 1)
}

func TestOpenSinks(t *testing.T) {
	sink, err := OpenSinks(context.Background(), ops.HistoryConfig{})
	require.NoError(t, err)
	assert.Nil(t, sink)

	_, err = OpenSinks(context.Background(), ops.HistoryConfig{Sinks: []string{"tape"}})
	assert.Error(t, err)

	dir := t.TempDir()
	sink, err = OpenSinks(context.Background(), ops.HistoryConfig{
		Sinks:      []string{ops.SinkFile, ops.SinkJournal},
		Dir:        dir,
		JournalDir: filepath.Join(dir, "journal"),
		Async:      true,
		QueueSize:  16,
	})
	require.NoError(t, err)
	_, async := sink.(*history.AsyncSink)
	assert.True(t, async)

	require.NoError(t, sink.Write(context.Background(), history.Record{
		Type:      schema.EventRisk,
		Key:       bond2y,
		Timestamp: time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC),
		Fields:    []string{bond2y, "0.01948992", "100"},
	}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(filepath.Join(dir, history.FileName(schema.EventRisk)))
	require.NoError(t, err)
	assert.Contains(t, string(data), bond2y+",0.01948992,100")

	segments, err := filepath.Glob(filepath.Join(dir, "journal", "*.wal"))
	require.NoError(t, err)
	assert.NotEmpty(t, segments)
}
