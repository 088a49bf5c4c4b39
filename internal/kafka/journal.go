package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"saleor-stripe-app/internal/model"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

var (
	journalSuccessCounter = metrics.GetOrCreateCounter(`report_journal_total{result="success"}`)
	journalErrorCounter   = metrics.GetOrCreateCounter(`report_journal_total{result="publish_failed"}`)

	journalDurationHistogram = metrics.GetOrCreateHistogram(`report_journal_duration_milliseconds`)
)

// ReportMessage is one entry of the transaction report journal.
type ReportMessage struct {
	SaleorAPIURL     string                       `json:"saleorApiUrl"`
	StripeEventID    string                       `json:"stripeEventId"`
	AlreadyProcessed bool                         `json:"alreadyProcessed"`
	Report           model.TransactionEventReport `json:"report"`
	ReportedAt       time.Time                    `json:"reportedAt"`
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Journal publishes every delivered report keyed by transaction id, so all
// events of one transaction land on the same partition in order.
type Journal struct {
	writer MessageWriter
	logger *slog.Logger
}

func NewJournal(writer MessageWriter, logger *slog.Logger) *Journal {
	return &Journal{writer: writer, logger: logger}
}

func (j *Journal) Publish(ctx context.Context, msg ReportMessage) error {
	startTime := time.Now()
	defer func() {
		journalDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
	}()

	value, err := json.Marshal(msg)
	if err != nil {
		journalErrorCounter.Inc()
		return errors.Wrap(err, "marshalling report message")
	}

	j.logger.DebugContext(ctx, "Writing report to Kafka", "transactionId", msg.Report.TransactionID)

	err = j.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Report.TransactionID),
		Value: value,
	})
	if err != nil {
		j.logger.ErrorContext(ctx, "Error writing report to Kafka", "error", err)
		journalErrorCounter.Inc()
		return errors.Wrap(err, "writing report message")
	}

	journalSuccessCounter.Inc()
	return nil
}
