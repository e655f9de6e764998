package history

import (
	"context"
	"strconv"

	"github.com/segmentio/kafka-go"
)

const defaultTopicPrefix = "tradeflow."

// MessageWriter is the subset of the kafka writer used by KafkaSink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each record to a topic per stage keyed on persist key,
// so updates of one key stay ordered within a partition.
type KafkaSink struct {
	w      MessageWriter
	prefix string
}

// NewKafkaSink creates a sink writing to topics named prefix+stage.
func NewKafkaSink(w MessageWriter, prefix string) *KafkaSink {
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return &KafkaSink{w: w, prefix: prefix}
}

// Message maps rec into a kafka message. The value is the text sink line.
func (s *KafkaSink) Message(rec Record) kafka.Message {
	return kafka.Message{
		Topic: s.prefix + rec.Stage(),
		Key:   []byte(rec.Key),
		Value: []byte(FormatLine(rec)),
		Headers: []kafka.Header{
			{Key: "schema", Value: []byte(strconv.Itoa(int(rec.Type)))},
		},
		Time: rec.Timestamp,
	}
}

// Write implements Sink.
func (s *KafkaSink) Write(ctx context.Context, rec Record) error {
	return s.w.WriteMessages(ctx, s.Message(rec))
}

// Close implements Sink.
func (s *KafkaSink) Close() error {
	return s.w.Close()
}
