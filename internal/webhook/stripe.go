package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/kafka"
	"saleor-stripe-app/internal/logcontext"
	"saleor-stripe-app/internal/metadata"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/paymentconfig"
	"saleor-stripe-app/internal/saleor"
	"saleor-stripe-app/internal/stripeapi"
	"saleor-stripe-app/internal/transaction"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
)

var (
	stripeWebhookReportedCounter         = metrics.GetOrCreateCounter(`stripe_webhook_total{result="reported"}`)
	stripeWebhookAlreadyProcessedCounter = metrics.GetOrCreateCounter(`stripe_webhook_total{result="already_processed"}`)
	stripeWebhookIgnoredCounter          = metrics.GetOrCreateCounter(`stripe_webhook_total{result="ignored"}`)
	stripeWebhookErrorCounter            = metrics.GetOrCreateCounter(`stripe_webhook_total{result="error"}`)

	stripeWebhookDurationHistogram = metrics.GetOrCreateHistogram(`stripe_webhook_duration_milliseconds`)
)

type AuthDataGetter interface {
	Get(ctx context.Context, saleorAPIURL string) (*model.AuthData, error)
}

type Reporter interface {
	ReportTransactionEvent(ctx context.Context, auth model.AuthData, report *model.TransactionEventReport) (*saleor.ReportResult, error)
}

type Journal interface {
	Publish(ctx context.Context, msg kafka.ReportMessage) error
}

// Delivery is one incoming Stripe webhook request.
type Delivery struct {
	SaleorAPIURL string
	Signature    string
	Body         []byte
}

// Receipt describes a delivery that reached Saleor.
type Receipt struct {
	EventID          string
	Report           *model.TransactionEventReport
	AlreadyProcessed bool
}

type unverifiedEvent struct {
	Data struct {
		Object struct {
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Processor turns Stripe webhook deliveries into Saleor transaction event reports.
type Processor struct {
	apl      AuthDataGetter
	configs  metadata.Manager
	reporter Reporter
	journal  Journal
	logger   *slog.Logger
}

// NewProcessor wires the processor. journal may be nil.
func NewProcessor(apl AuthDataGetter, configs metadata.Manager, reporter Reporter, journal Journal, logger *slog.Logger) *Processor {
	return &Processor{apl: apl, configs: configs, reporter: reporter, journal: journal, logger: logger}
}

// Process returns nil, nil when the delivery is not meant for any configured
// channel or its signature does not match; Stripe gets a 2xx either way.
func (p *Processor) Process(ctx context.Context, d Delivery) (*Receipt, error) {
	startTime := time.Now()
	defer func() {
		stripeWebhookDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
	}()

	receipt, err := p.process(ctx, d)
	switch {
	case err != nil:
		stripeWebhookErrorCounter.Inc()
	case receipt == nil:
		stripeWebhookIgnoredCounter.Inc()
	case receipt.AlreadyProcessed:
		stripeWebhookAlreadyProcessedCounter.Inc()
	default:
		stripeWebhookReportedCounter.Inc()
	}
	return receipt, err
}

func (p *Processor) process(ctx context.Context, d Delivery) (*Receipt, error) {
	if d.SaleorAPIURL == "" {
		return nil, errors.WithStack(apperror.ErrMissingTenant)
	}
	if d.Signature == "" {
		return nil, errors.WithStack(apperror.ErrMissingSignature)
	}
	ctx = logcontext.AppendCtx(ctx, slog.String("saleorApiUrl", d.SaleorAPIURL))

	auth, err := p.apl.Get(ctx, d.SaleorAPIURL)
	if err != nil {
		return nil, errors.Wrap(err, "loading auth data")
	}
	if auth == nil {
		return nil, errors.WithStack(apperror.ErrMissingAuthData)
	}

	config, err := paymentconfig.NewStore(p.configs, d.SaleorAPIURL).GetConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading app configuration")
	}

	// The channel only picks which secret to verify with; nothing else is
	// trusted before verification.
	var unverified unverifiedEvent
	if err := json.Unmarshal(d.Body, &unverified); err != nil {
		return nil, errors.Wrap(apperror.ErrInvalidInput, "webhook body is not json")
	}
	channelID := unverified.Data.Object.Metadata["channelId"]

	entry := paymentconfig.GetConfigurationForChannel(ctx, p.logger, config, channelID)
	if entry == nil || entry.SecretKey == "" {
		p.logger.InfoContext(ctx, "No configuration for channel, ignoring webhook", "channelId", channelID)
		return nil, nil
	}
	if entry.WebhookSecret == nil || *entry.WebhookSecret == "" {
		p.logger.WarnContext(ctx, "Configuration has no webhook secret, ignoring webhook",
			"configurationId", entry.ConfigurationID)
		return nil, nil
	}

	stripeEvent, err := stripeapi.ConstructEvent(d.Body, d.Signature, *entry.WebhookSecret)
	if err != nil {
		if stripeapi.IsSignatureError(err) {
			p.logger.WarnContext(ctx, "Invalid Stripe signature, ignoring webhook", "error", err)
			return nil, nil
		}
		return nil, errors.Wrap(err, "constructing stripe event")
	}
	ctx = logcontext.AppendCtx(ctx, slog.String("stripeEventId", stripeEvent.ID))
	p.logger.InfoContext(ctx, "Received Stripe event", "type", stripeEvent.Type)

	event, err := transaction.ParseEvent(stripeEvent)
	if err != nil {
		return nil, err
	}
	report, err := transaction.MapEvent(event)
	if err != nil {
		return nil, err
	}
	if report == nil {
		p.logger.InfoContext(ctx, "Event does not concern a Saleor transaction", "type", stripeEvent.Type)
		return nil, nil
	}

	result, err := p.reporter.ReportTransactionEvent(ctx, *auth, report)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error reporting transaction event", "error", err)
		return nil, err
	}
	p.logger.InfoContext(ctx, "Reported transaction event",
		"transactionId", report.TransactionID, "type", report.Type, "alreadyProcessed", result.AlreadyProcessed)

	if p.journal != nil {
		err := p.journal.Publish(ctx, kafka.ReportMessage{
			SaleorAPIURL:     d.SaleorAPIURL,
			StripeEventID:    stripeEvent.ID,
			AlreadyProcessed: result.AlreadyProcessed,
			Report:           *report,
			ReportedAt:       time.Now().UTC(),
		})
		if err != nil {
			p.logger.WarnContext(ctx, "Report delivered but not journaled", "error", err)
		}
	}

	return &Receipt{EventID: stripeEvent.ID, Report: report, AlreadyProcessed: result.AlreadyProcessed}, nil
}
