package history

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yanun0323/logs"

	"tradeflow/internal/bus"
)

// AsyncSink hands records to a bounded queue drained by one goroutine, so
// slow sinks never block the pipeline. It is lossy: when the queue is full
// Write drops the record, counts it and returns bus.ErrQueueFull.
type AsyncSink struct {
	next    Sink
	queue   *bus.Queue[Record]
	wg      sync.WaitGroup
	dropped atomic.Uint64
	failed  atomic.Uint64
	once    sync.Once
}

// NewAsyncSink starts draining into next until Close or ctx is done.
func NewAsyncSink(ctx context.Context, next Sink, capacity int) *AsyncSink {
	s := &AsyncSink{next: next, queue: bus.NewQueue[Record](capacity)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.queue.Run(ctx, func(rec Record) {
			if err := next.Write(ctx, rec); err != nil {
				s.failed.Add(1)
				logs.Errorf("async write %s %s, err: %+v", rec.Stage(), rec.Key, err)
			}
		})
	}()
	return s
}

// Write implements Sink.
func (s *AsyncSink) Write(_ context.Context, rec Record) error {
	if err := s.queue.TryPublish(rec); err != nil {
		s.dropped.Add(1)
		return err
	}
	return nil
}

// Dropped returns the number of records rejected by the queue.
func (s *AsyncSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Failed returns the number of records the wrapped sink rejected.
func (s *AsyncSink) Failed() uint64 {
	return s.failed.Load()
}

// Close drains the queue and closes the wrapped sink.
func (s *AsyncSink) Close() error {
	var err error
	s.once.Do(func() {
		s.queue.Close()
		s.wg.Wait()
		err = s.next.Close()
	})
	return err
}
