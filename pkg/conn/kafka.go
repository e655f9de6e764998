package conn

import (
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yanun0323/errors"
)

// KafkaOption defines producer options for Kafka.
type KafkaOption struct {
	Brokers      []string      `json:"brokers"`
	MaxAttempts  int           `json:"maxAttempts"`
	BatchTimeout time.Duration `json:"batchTimeout"`
}

// NewKafkaWriter creates a producer without a fixed topic; every message
// carries its own topic.
func NewKafkaWriter(option KafkaOption) (*kafka.Writer, error) {
	if len(option.Brokers) == 0 {
		return nil, errors.New("kafka brokers are empty")
	}
	batchTimeout := option.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(option.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            option.MaxAttempts,
		BatchTimeout:           batchTimeout,
	}, nil
}
