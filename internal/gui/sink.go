package gui

import (
	"strings"
	"time"

	"github.com/yanun0323/logs"

	"tradeflow/internal/bus"
	"tradeflow/internal/codec"
	"tradeflow/internal/schema"
)

// DefaultThrottle is the minimum gap between two emitted price lines.
const DefaultThrottle = 300 * time.Millisecond

// Config configures a Sink. Zero fields take defaults.
type Config struct {
	Throttle time.Duration
	Now      func() time.Time
	Write    func(line string)
}

// Sink renders internal prices for a trader screen, at most one line per
// throttle window. Prices arriving inside the window are dropped.
type Sink struct {
	throttle time.Duration
	now      func() time.Time
	write    func(line string)

	last    time.Time
	emitted uint64
	dropped uint64
}

// NewSink creates a throttled price sink.
func NewSink(cfg Config) *Sink {
	if cfg.Throttle <= 0 {
		cfg.Throttle = DefaultThrottle
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Write == nil {
		cfg.Write = func(line string) { logs.Info(line) }
	}
	return &Sink{
		throttle: cfg.Throttle,
		now:      cfg.Now,
		write:    cfg.Write,
	}
}

// OnPrice emits price unless the previous line is younger than the throttle.
func (s *Sink) OnPrice(price schema.Price) bool {
	now := s.now()
	if s.emitted > 0 && now.Sub(s.last) < s.throttle {
		s.dropped++
		return false
	}
	s.last = now
	s.emitted++
	s.write(FormatLine(now, price))
	return true
}

// Emitted returns the number of lines written.
func (s *Sink) Emitted() uint64 {
	return s.emitted
}

// Dropped returns the number of prices suppressed by the throttle.
func (s *Sink) Dropped() uint64 {
	return s.dropped
}

// Listener subscribes the sink to the pricing stage.
func (s *Sink) Listener() bus.Listener[schema.Price] {
	return bus.AddFunc[schema.Price](func(p schema.Price) {
		s.OnPrice(p)
	})
}

// FormatLine renders one screen line: timestamp, bond id, mid and spread.
func FormatLine(ts time.Time, price schema.Price) string {
	var b strings.Builder
	b.Grow(64)
	b.WriteString(ts.UTC().Format("2006-01-02 15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(price.Bond.ID)
	b.WriteByte(' ')
	b.WriteString(codec.EncodePrice(price.Mid))
	b.WriteByte(' ')
	b.WriteString(codec.EncodePrice(price.Spread))
	return b.String()
}
