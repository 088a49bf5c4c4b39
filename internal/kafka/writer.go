package kafka

import (
	"strings"
	"time"

	"saleor-stripe-app/internal/config"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 100
)

// NewWriter returns nil when no broker is configured.
func NewWriter(cfg config.Kafka) *kafka.Writer {
	if cfg.Broker.URL == "" {
		return nil
	}

	batchSize := cfg.Writer.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batchTimeout := cfg.Writer.BatchTimeoutMs
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(cfg.Broker.URL, ",")...),
		Topic:                  cfg.Topic.TransactionReports,
		Balancer:               &kafka.ReferenceHash{},
		BatchSize:              batchSize,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           time.Duration(batchTimeout) * time.Millisecond,
		Async:                  false,
		AllowAutoTopicCreation: false,
	}
}
