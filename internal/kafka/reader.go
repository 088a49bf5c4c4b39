package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"saleor-stripe-app/internal/config"

	"github.com/VictoriaMetrics/metrics"
	"github.com/segmentio/kafka-go"
)

var (
	readErrorCounter      = metrics.GetOrCreateCounter(`kafka_reader_total{result="read_error",type="transaction_report"}`)
	unmarshalErrorCounter = metrics.GetOrCreateCounter(`kafka_reader_total{result="unmarshal_error",type="transaction_report"}`)
	handleErrorCounter    = metrics.GetOrCreateCounter(`kafka_reader_total{result="process_error",type="transaction_report"}`)
	readSuccessCounter    = metrics.GetOrCreateCounter(`kafka_reader_total{result="success",type="transaction_report"}`)
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

func NewReader(cfg config.Kafka, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(cfg.Broker.URL, ","),
		GroupID: groupID,
		Topic:   cfg.Topic.TransactionReports,
	})
}

// ReadReports consumes the journal until ctx is done. Broken messages are
// logged and skipped.
func ReadReports(ctx context.Context, reader MessageReader, logger *slog.Logger, handle func(context.Context, ReportMessage) error) error {
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.ErrorContext(ctx, "Error reading message", "error", err)
			readErrorCounter.Inc()
			return err
		}

		var msg ReportMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			logger.ErrorContext(ctx, "Error unmarshalling message", "error", err, "offset", m.Offset)
			unmarshalErrorCounter.Inc()
			continue
		}

		if err := handle(ctx, msg); err != nil {
			logger.ErrorContext(ctx, "Error processing message", "error", err, "offset", m.Offset)
			handleErrorCounter.Inc()
			continue
		}
		readSuccessCounter.Inc()
	}
}
