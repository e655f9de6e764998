package obs

import (
	"strings"
	"sync/atomic"
	"time"

	"tradeflow/internal/schema"
)

const maxEventType = int(schema.EventAlgoExecution)

// Metrics collects lock-free counters and fan-out latency per stage. It
// implements bus.Observer.
type Metrics struct {
	publishCounts [maxEventType + 1]uint64
	listenerCalls [maxEventType + 1]uint64
	fanout        [maxEventType + 1]LatencyStats

	feedAccepted uint64
	feedSkipped  uint64
	sinkDrops    uint64
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Sum   time.Duration
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// StageSnapshot is a point-in-time view of one stage.
type StageSnapshot struct {
	Published     uint64
	ListenerCalls uint64
	Fanout        LatencySnapshot
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Stages       map[schema.EventType]StageSnapshot
	FeedAccepted uint64
	FeedSkipped  uint64
	SinkDrops    uint64
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// StageType maps a store name such as "position" or "position.history" to its event type.
func StageType(stage string) (schema.EventType, bool) {
	base, _, _ := strings.Cut(stage, ".")
	return schema.ParseEventType(base)
}

// ObservePublish records one fan-out of stage to listeners taking d.
func (m *Metrics) ObservePublish(stage string, listeners int, d time.Duration) {
	if m == nil {
		return
	}
	t, ok := StageType(stage)
	if !ok {
		return
	}
	idx := int(t)
	atomic.AddUint64(&m.publishCounts[idx], 1)
	atomic.AddUint64(&m.listenerCalls[idx], uint64(listeners))
	m.fanout[idx].Observe(d)
}

// AddFeedRows records rows accepted and skipped by the inbound feeds.
func (m *Metrics) AddFeedRows(accepted, skipped uint64) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.feedAccepted, accepted)
	atomic.AddUint64(&m.feedSkipped, skipped)
}

// AddSinkDrops records records a historical sink could not accept.
func (m *Metrics) AddSinkDrops(n uint64) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sinkDrops, n)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	stages := make(map[schema.EventType]StageSnapshot)
	for i := range m.publishCounts {
		published := atomic.LoadUint64(&m.publishCounts[i])
		if published == 0 {
			continue
		}
		stages[schema.EventType(i)] = StageSnapshot{
			Published:     published,
			ListenerCalls: atomic.LoadUint64(&m.listenerCalls[i]),
			Fanout:        m.fanout[i].Snapshot(),
		}
	}
	return Snapshot{
		Stages:       stages,
		FeedAccepted: atomic.LoadUint64(&m.feedAccepted),
		FeedSkipped:  atomic.LoadUint64(&m.feedSkipped),
		SinkDrops:    atomic.LoadUint64(&m.sinkDrops),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		cur := atomic.LoadUint64(&l.min)
		if cur != 0 && nanos >= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, cur, nanos) {
			break
		}
	}
	for {
		cur := atomic.LoadUint64(&l.max)
		if nanos <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, cur, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	return LatencySnapshot{
		Count: count,
		Sum:   time.Duration(sum),
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(sum / count),
	}
}
