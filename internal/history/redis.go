package history

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultStreamPrefix = "tradeflow:"

// StreamAdder is the subset of the redis client used by RedisSink.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisSink appends each record to a capped redis stream per stage.
type RedisSink struct {
	client StreamAdder
	prefix string
	maxLen int64
}

// NewRedisSink creates a sink writing to streams named prefix+stage.
func NewRedisSink(client StreamAdder, prefix string, maxLen int64) *RedisSink {
	if prefix == "" {
		prefix = defaultStreamPrefix
	}
	return &RedisSink{client: client, prefix: prefix, maxLen: maxLen}
}

// Stream returns the stream name of a record.
func (s *RedisSink) Stream(rec Record) string {
	return s.prefix + rec.Stage()
}

// Write implements Sink.
func (s *RedisSink) Write(ctx context.Context, rec Record) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.Stream(rec),
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: map[string]any{
			"key":    rec.Key,
			"ts":     rec.Timestamp.UnixNano(),
			"fields": strings.Join(rec.Fields, ","),
		},
	}).Err()
}

// Close implements Sink.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
