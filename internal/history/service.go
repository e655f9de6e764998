package history

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
)

// Record is one persisted stage output.
type Record struct {
	Type      schema.EventType
	Key       string
	Timestamp time.Time
	Fields    []string
}

// Stage returns the stage name of the record.
func (r Record) Stage() string {
	return r.Type.String()
}

// Sink is an append-only destination for records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// Service keeps the latest value of one stage by persist key and forwards
// every value to a sink.
type Service[V schema.Recordable] struct {
	*bus.Store[string, V]
	eventType schema.EventType
	sink      Sink
	now       func() time.Time
	failures  uint64
}

// NewService creates a historical data service for eventType.
func NewService[V schema.Recordable](eventType schema.EventType, sink Sink, opts ...bus.Option) *Service[V] {
	return &Service[V]{
		Store:     bus.NewStore(eventType.String()+".history", func(v V) string { return v.PersistKey() }, opts...),
		eventType: eventType,
		sink:      sink,
		now:       time.Now,
	}
}

// WithClock swaps the timestamp source.
func (s *Service[V]) WithClock(now func() time.Time) *Service[V] {
	if now != nil {
		s.now = now
	}
	return s
}

// PersistData stores v and writes its record to the sink.
func (s *Service[V]) PersistData(ctx context.Context, v V) error {
	key := s.Put(v)
	return s.sink.Write(ctx, Record{
		Type:      s.eventType,
		Key:       key,
		Timestamp: s.now(),
		Fields:    v.ToRecord(),
	})
}

// Failures returns how many sink writes failed.
func (s *Service[V]) Failures() uint64 {
	return s.failures
}

// Listener subscribes the service to the stage it persists. Sink failures are
// logged and counted.
func (s *Service[V]) Listener() bus.Listener[V] {
	return bus.AddFunc[V](func(v V) {
		if err := s.PersistData(context.Background(), v); err != nil {
			s.failures++
			logs.Errorf("persist %s %s, err: %+v", s.eventType, v.PersistKey(), err)
		}
	})
}
