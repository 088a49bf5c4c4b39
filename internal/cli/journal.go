package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"saleor-stripe-app/internal/config"
	"saleor-stripe-app/internal/kafka"
	"saleor-stripe-app/internal/logging"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var journalGroupID string

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Tail the transaction report journal",
	Long: `Reads transaction reports published to Kafka after every Stripe webhook
that reached Saleor and logs them until interrupted.`,
	RunE: runJournal,
}

func init() {
	journalCmd.Flags().StringVar(&journalGroupID, "group", "saleor-stripe-app-journal", "kafka consumer group")
}

func runJournal(cmd *cobra.Command, _ []string) error {
	cfg := config.MustLoadConfig(configPath)
	logger := logging.GetLogger(cfg.Logs)
	if cfg.Kafka.Broker.URL == "" {
		return errors.New("kafka.broker.url is not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := kafka.NewReader(cfg.Kafka, journalGroupID)
	defer reader.Close()

	return kafka.ReadReports(ctx, reader, logger, func(ctx context.Context, msg kafka.ReportMessage) error {
		logger.InfoContext(ctx, "Transaction report",
			"saleorApiUrl", msg.SaleorAPIURL,
			"stripeEventId", msg.StripeEventID,
			"transactionId", msg.Report.TransactionID,
			"type", msg.Report.Type,
			"amount", msg.Report.Amount.String(),
			"alreadyProcessed", msg.AlreadyProcessed,
		)
		return nil
	})
}
