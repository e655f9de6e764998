package pipeline

import (
	"context"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"tradeflow/internal/booking"
	"tradeflow/internal/bus"
	"tradeflow/internal/execution"
	"tradeflow/internal/feed"
	"tradeflow/internal/gui"
	"tradeflow/internal/history"
	"tradeflow/internal/inquiry"
	"tradeflow/internal/marketdata"
	"tradeflow/internal/obs"
	"tradeflow/internal/ops"
	"tradeflow/internal/pricing"
	"tradeflow/internal/risk"
	"tradeflow/internal/schema"
	"tradeflow/internal/state"
	"tradeflow/internal/streaming"
	"tradeflow/pkg/exception"
)

// Options assemble a Pipeline. Sink and Metrics are optional.
type Options struct {
	Config  ops.Loaded
	Sink    history.Sink
	Metrics *obs.Metrics
	GUI     gui.Config
	IDs     execution.IDGenerator
}

// Pipeline holds every stage, subscribed to its upstream:
//
//	pricing -> algo streaming -> streaming -> history
//	pricing -> gui
//	market data -> algo execution -> execution -> booking -> position -> risk
//	inquiry <-> connector
type Pipeline struct {
	Registry *schema.Registry

	Pricing       *pricing.Service
	AlgoStreaming *streaming.AlgoService
	Streaming     *streaming.Service
	GUI           *gui.Sink

	MarketData    *marketdata.Service
	AlgoExecution *execution.AlgoService
	Execution     *execution.Service
	Booking       *booking.Service
	Positions     *state.PositionService
	Risk          *risk.Service
	Inquiries     *inquiry.Service

	StreamingHistory *history.Service[schema.PriceStream]
	ExecutionHistory *history.Service[schema.ExecutionOrder]
	PositionHistory  *history.Service[schema.Position]
	RiskHistory      *history.Service[schema.PV01[schema.Bond]]
	InquiryHistory   *history.Service[schema.Inquiry]

	cfg     ops.Loaded
	sink    history.Sink
	metrics *obs.Metrics
}

// New builds and subscribes every stage.
func New(opt Options) (*Pipeline, error) {
	cfg := opt.Config
	if cfg.Registry == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "pipeline registry")
	}

	var busOpts []bus.Option
	if opt.Metrics != nil {
		busOpts = append(busOpts, bus.WithObserver(opt.Metrics))
	}

	ids := opt.IDs
	if ids == nil && cfg.IDPrefix != "" {
		ids = execution.NewSequenceGenerator(cfg.IDPrefix, 0)
	}

	bookingSvc, err := booking.NewService(cfg.Books, busOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "booking books").With("books", cfg.Books)
	}

	guiCfg := opt.GUI
	if guiCfg.Throttle <= 0 {
		guiCfg.Throttle = cfg.GUIThrottle
	}

	p := &Pipeline{
		Registry:      cfg.Registry,
		Pricing:       pricing.NewService(busOpts...),
		AlgoStreaming: streaming.NewAlgoService(cfg.BaseSize, busOpts...),
		Streaming:     streaming.NewService(busOpts...),
		GUI:           gui.NewSink(guiCfg),
		MarketData:    marketdata.NewService(cfg.Feeds.BookDepth, busOpts...),
		AlgoExecution: execution.NewAlgoService(execution.AlgoConfig{
			SpreadThreshold: cfg.SpreadThreshold,
			OrderType:       cfg.OrderType,
			IDs:             ids,
		}, busOpts...),
		Execution: execution.NewService(busOpts...),
		Booking:   bookingSvc,
		Positions: state.NewPositionService(busOpts...),
		Risk:      risk.NewService(cfg.Registry, busOpts...),
		Inquiries: inquiry.NewService(busOpts...),
		cfg:       cfg,
		sink:      opt.Sink,
		metrics:   opt.Metrics,
	}

	p.Pricing.AddListener(p.AlgoStreaming.Listener())
	p.Pricing.AddListener(p.GUI.Listener())
	p.AlgoStreaming.AddListener(p.Streaming.Listener())

	p.MarketData.AddListener(p.AlgoExecution.Listener())
	p.AlgoExecution.AddListener(p.Execution.Listener())
	p.Execution.AddListener(p.Booking.Listener())
	p.Booking.AddListener(p.Positions.Listener())
	p.Positions.AddListener(p.Risk.Listener())

	if cfg.AutoQuote {
		inquiry.NewLoopback(p.Inquiries)
	}

	if opt.Sink != nil {
		p.StreamingHistory = history.NewService[schema.PriceStream](schema.EventPriceStream, opt.Sink, busOpts...)
		p.ExecutionHistory = history.NewService[schema.ExecutionOrder](schema.EventExecution, opt.Sink, busOpts...)
		p.PositionHistory = history.NewService[schema.Position](schema.EventPosition, opt.Sink, busOpts...)
		p.RiskHistory = history.NewService[schema.PV01[schema.Bond]](schema.EventRisk, opt.Sink, busOpts...)
		p.InquiryHistory = history.NewService[schema.Inquiry](schema.EventInquiry, opt.Sink, busOpts...)

		p.Streaming.AddListener(p.StreamingHistory.Listener())
		p.Execution.AddListener(p.ExecutionHistory.Listener())
		p.Positions.AddListener(p.PositionHistory.Listener())
		p.Risk.AddListener(p.RiskHistory.Listener())
		p.Inquiries.AddListener(p.InquiryHistory.Listener())
	}
	return p, nil
}

// FeedResult is the outcome of one feed file.
type FeedResult struct {
	Name  string
	Path  string
	Stats feed.Stats
}

// RunFeeds replays the configured feed files in order: prices, market data,
// trades, then inquiries. Files with an empty path are skipped.
func (p *Pipeline) RunFeeds(ctx context.Context, files ops.FeedsConfig) ([]FeedResult, error) {
	marketData, err := feed.NewMarketDataFeed(p.Registry, p.MarketData, p.MarketData.BookDepth())
	if err != nil {
		return nil, err
	}

	plan := []struct {
		path string
		conn feed.Connector
	}{
		{files.Prices, feed.PriceFeed{Bonds: p.Registry, Target: p.Pricing}},
		{files.MarketData, marketData},
		{files.Trades, feed.TradeFeed{Bonds: p.Registry, Target: p.Booking}},
		{files.Inquiries, feed.InquiryFeed{Bonds: p.Registry, Target: p.Inquiries}},
	}

	results := make([]FeedResult, 0, len(plan))
	for _, step := range plan {
		if step.path == "" {
			continue
		}
		stats, err := feed.RunFile(ctx, step.path, step.conn)
		if p.metrics != nil {
			p.metrics.AddFeedRows(stats.Accepted, stats.Skipped)
		}
		results = append(results, FeedResult{Name: step.conn.Name(), Path: step.path, Stats: stats})
		if err != nil {
			return results, errors.Wrap(err, "run feed").With("feed", step.conn.Name())
		}
		logs.Infof("%s feed done, rows: %d, accepted: %d, skipped: %d", step.conn.Name(), stats.Rows, stats.Accepted, stats.Skipped)
	}
	if pending := marketData.Pending(); pending > 0 {
		logs.Infof("marketdata feed left %d rows in incomplete books", pending)
	}
	return results, nil
}

// Recover restores positions from the snapshot and journal in cfg, then
// rebuilds the risk of every stored position. Nothing is published, so the
// historical sinks do not see recovered state again.
func (p *Pipeline) Recover(ctx context.Context, cfg state.RecoverConfig) (state.RecoverResult, error) {
	result, err := p.Positions.Recover(ctx, cfg, p.Registry)
	if err != nil {
		return result, err
	}
	p.RestoreRisk()
	return result, nil
}

// RestoreRisk recomputes the risk stage from the stored positions. Positions
// in bonds without a PV01 entry are logged and skipped.
func (p *Pipeline) RestoreRisk() int {
	restored := 0
	p.Positions.Range(func(_ string, pos schema.Position) bool {
		if _, err := p.Risk.Restore(pos); err != nil {
			logs.Errorf("restore risk, err: %+v", err)
			return true
		}
		restored++
		return true
	})
	return restored
}

// Close flushes and closes the historical sink.
func (p *Pipeline) Close() error {
	if p.sink == nil {
		return nil
	}
	err := p.sink.Close()
	if p.metrics != nil {
		p.metrics.AddSinkDrops(droppedOf(p.sink))
	}
	return err
}

func droppedOf(sink history.Sink) uint64 {
	if d, ok := sink.(interface{ Dropped() uint64 }); ok {
		return d.Dropped()
	}
	return 0
}
