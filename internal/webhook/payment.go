package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/currency"
	"saleor-stripe-app/internal/logcontext"
	"saleor-stripe-app/internal/metadata"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/paymentconfig"
	"saleor-stripe-app/internal/stripeapi"
	"saleor-stripe-app/internal/transaction"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
)

// Payments answers the synchronous payment webhooks Saleor sends while a
// checkout or order is being paid.
type Payments struct {
	configs metadata.Manager
	stripe  stripeapi.Factory
	logger  *slog.Logger
}

func NewPayments(configs metadata.Manager, stripe stripeapi.Factory, logger *slog.Logger) *Payments {
	return &Payments{configs: configs, stripe: stripe, logger: logger}
}

func (p *Payments) PaymentGatewayInitializeSession(ctx context.Context, saleorAPIURL string, ev GatewayInitializeEvent) (*GatewayResponse, error) {
	entry, err := p.entryForChannel(ctx, saleorAPIURL, ev.SourceObject.Channel.ID)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "Processing payment gateway initialize request")

	return &GatewayResponse{Data: GatewayData{PublishableKey: entry.PublishableKey}}, nil
}

func (p *Payments) TransactionInitializeSession(ctx context.Context, saleorAPIURL string, ev SessionEvent) (*SessionResponse, error) {
	strategy, err := flowStrategy(ev.Action.ActionType)
	if err != nil {
		return nil, err
	}
	entry, err := p.entryForChannel(ctx, saleorAPIURL, ev.SourceObject.Channel.ID)
	if err != nil {
		return nil, err
	}
	ctx = logcontext.AppendCtx(ctx, slog.String("transactionId", ev.Transaction.ID))

	params, err := createParams(ev, strategy)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "Creating payment intent",
		"environment", stripeapi.Environment(entry.PublishableKey), "amount", *params.Amount, "currency", *params.Currency)

	intent, err := p.stripe(entry.SecretKey).CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, err
	}
	return sessionResponse(strategy, intent, entry.PublishableKey, true)
}

func (p *Payments) TransactionProcessSession(ctx context.Context, saleorAPIURL string, ev SessionEvent) (*SessionResponse, error) {
	strategy, err := flowStrategy(ev.Action.ActionType)
	if err != nil {
		return nil, err
	}
	if ev.Transaction.PSPReference == "" {
		return nil, apperror.Invariant("missing transaction.pspReference")
	}
	entry, err := p.entryForChannel(ctx, saleorAPIURL, ev.SourceObject.Channel.ID)
	if err != nil {
		return nil, err
	}
	ctx = logcontext.AppendCtx(ctx, slog.String("transactionId", ev.Transaction.ID))

	data, err := decodeSessionData(ev.Data)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentUpdateParams{}
	if data.PaymentMethod != "" {
		params.PaymentMethod = stripe.String(data.PaymentMethod)
	}
	if data.Description != "" {
		params.Description = stripe.String(data.Description)
	}
	if data.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(data.ReceiptEmail)
	}
	for k, v := range data.Metadata {
		params.AddMetadata(k, v)
	}

	p.logger.InfoContext(ctx, "Updating payment intent", "paymentIntentId", ev.Transaction.PSPReference)
	intent, err := p.stripe(entry.SecretKey).UpdatePaymentIntent(ctx, ev.Transaction.PSPReference, params)
	if err != nil {
		return nil, err
	}
	return sessionResponse(strategy, intent, entry.PublishableKey, false)
}

func (p *Payments) TransactionChargeRequested(ctx context.Context, saleorAPIURL string, ev ActionRequestEvent) (*ActionResponse, error) {
	if err := checkActionRequest(ev, transaction.ActionCharge); err != nil {
		return nil, err
	}
	if !ev.Action.Amount.Valid {
		return nil, apperror.Invariant("missing action.amount")
	}
	entry, err := p.entryForChannel(ctx, saleorAPIURL, ev.Transaction.Source().Channel.ID)
	if err != nil {
		return nil, err
	}

	amount, err := currency.ToMinorUnits(ev.Action.Amount.Decimal, ev.Action.Currency)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Capturing payment intent", "paymentIntentId", ev.Transaction.PSPReference, "amount", amount)
	intent, err := p.stripe(entry.SecretKey).CapturePaymentIntent(ctx, ev.Transaction.PSPReference, amount)
	if err != nil {
		return nil, err
	}

	result, err := transaction.ResultForIntentStatus(transaction.FlowCharge, string(intent.Status))
	if err != nil {
		return nil, err
	}
	if result != transaction.ChargeSuccess && result != transaction.ChargeFailure {
		return &ActionResponse{PSPReference: intent.ID}, nil
	}

	captured, err := currency.ToMajorUnits(intent.AmountReceived, string(intent.Currency))
	if err != nil {
		return nil, err
	}
	return &ActionResponse{
		PSPReference: intent.ID,
		Result:       string(result),
		Amount:       json.Number(captured.String()),
		ExternalURL:  transaction.ExternalURL(intent.ID),
		Actions:      transaction.ActionNames(transaction.AvailableActions(result)),
	}, nil
}

func (p *Payments) TransactionRefundRequested(ctx context.Context, saleorAPIURL string, ev ActionRequestEvent) (*ActionResponse, error) {
	if err := checkActionRequest(ev, transaction.ActionRefund); err != nil {
		return nil, err
	}
	channelID := ev.Transaction.Source().Channel.ID
	entry, err := p.entryForChannel(ctx, saleorAPIURL, channelID)
	if err != nil {
		return nil, err
	}

	var amount *int64
	if ev.Action.Amount.Valid {
		minor, err := currency.ToMinorUnits(ev.Action.Amount.Decimal, ev.Action.Currency)
		if err != nil {
			return nil, err
		}
		amount = &minor
	}

	p.logger.InfoContext(ctx, "Refunding payment intent", "paymentIntentId", ev.Transaction.PSPReference)
	refund, err := p.stripe(entry.SecretKey).CreateRefund(ctx, ev.Transaction.PSPReference, amount, map[string]string{
		"transactionId": ev.Transaction.ID,
		"channelId":     channelID,
	})
	if err != nil {
		return nil, err
	}

	refunded, err := currency.ToMajorUnits(refund.Amount, string(refund.Currency))
	if err != nil {
		return nil, err
	}
	externalURL := transaction.ExternalURL(ev.Transaction.PSPReference)

	switch refund.Status {
	case stripe.RefundStatusSucceeded:
		return &ActionResponse{
			PSPReference: refund.ID,
			Result:       string(transaction.RefundSuccess),
			Amount:       json.Number(refunded.String()),
			ExternalURL:  externalURL,
		}, nil
	case stripe.RefundStatusCanceled, stripe.RefundStatusFailed:
		return &ActionResponse{
			PSPReference: refund.ID,
			Result:       string(transaction.RefundFailure),
			Amount:       json.Number(refunded.String()),
			Message:      string(refund.FailureReason),
			ExternalURL:  externalURL,
		}, nil
	case stripe.RefundStatusRequiresAction:
		return &ActionResponse{PSPReference: refund.ID, Message: "requires_action"}, nil
	default:
		return &ActionResponse{PSPReference: refund.ID}, nil
	}
}

func (p *Payments) TransactionCancelationRequested(ctx context.Context, saleorAPIURL string, ev ActionRequestEvent) (*ActionResponse, error) {
	if err := checkActionRequest(ev, transaction.ActionCancel); err != nil {
		return nil, err
	}
	entry, err := p.entryForChannel(ctx, saleorAPIURL, ev.Transaction.Source().Channel.ID)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Canceling payment intent", "paymentIntentId", ev.Transaction.PSPReference)
	intent, err := p.stripe(entry.SecretKey).CancelPaymentIntent(ctx, ev.Transaction.PSPReference)
	if err != nil {
		return nil, err
	}
	if intent.Status != stripe.PaymentIntentStatusCanceled {
		return &ActionResponse{PSPReference: intent.ID}, nil
	}

	amount, err := currency.ToMajorUnits(intent.Amount, string(intent.Currency))
	if err != nil {
		return nil, err
	}
	return &ActionResponse{
		PSPReference: intent.ID,
		Result:       string(transaction.CancelSuccess),
		Amount:       json.Number(amount.String()),
		ExternalURL:  transaction.ExternalURL(intent.ID),
	}, nil
}

func (p *Payments) entryForChannel(ctx context.Context, saleorAPIURL, channelID string) (*model.ConfigEntry, error) {
	config, err := paymentconfig.NewStore(p.configs, saleorAPIURL).GetConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading app configuration")
	}
	entry := paymentconfig.GetConfigurationForChannel(ctx, p.logger, config, channelID)
	if entry == nil || !entry.FullyConfigured() {
		return nil, errors.Wrapf(apperror.ErrMissingConfiguration, "channel %q", channelID)
	}
	return entry, nil
}

func flowStrategy(actionType string) (transaction.FlowStrategy, error) {
	switch transaction.FlowStrategy(actionType) {
	case transaction.FlowCharge:
		return transaction.FlowCharge, nil
	case transaction.FlowAuthorization:
		return transaction.FlowAuthorization, nil
	default:
		return "", apperror.Invariant("unsupported action.actionType %q", actionType)
	}
}

func checkActionRequest(ev ActionRequestEvent, expected transaction.Action) error {
	if transaction.Action(ev.Action.ActionType) != expected {
		return apperror.Invariant("incorrect action.actionType: %s", ev.Action.ActionType)
	}
	if ev.Transaction.PSPReference == "" {
		return apperror.Invariant("missing transaction.pspReference")
	}
	if ev.Transaction.Source() == nil {
		return apperror.Invariant("transaction has neither checkout nor order")
	}
	return nil
}

func decodeSessionData(raw json.RawMessage) (sessionData, error) {
	var data sessionData
	if len(raw) == 0 || string(raw) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, errors.Wrap(apperror.ErrInvalidInput, "event data is not an object")
	}
	return data, nil
}

func createParams(ev SessionEvent, strategy transaction.FlowStrategy) (*stripe.PaymentIntentCreateParams, error) {
	if !ev.Action.Amount.Valid {
		return nil, apperror.Invariant("missing action.amount")
	}
	amount, err := currency.ToMinorUnits(ev.Action.Amount.Decimal, ev.Action.Currency)
	if err != nil {
		return nil, err
	}
	data, err := decodeSessionData(ev.Data)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(ev.Action.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if strategy == transaction.FlowAuthorization {
		params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}
	if data.Description != "" {
		params.Description = stripe.String(data.Description)
	}
	if data.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(data.ReceiptEmail)
	}
	if data.SetupFutureUsage != "" {
		params.SetupFutureUsage = stripe.String(data.SetupFutureUsage)
	}

	// Storefront metadata first so it cannot override the ids webhooks are routed by.
	for k, v := range data.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("transactionId", ev.Transaction.ID)
	params.AddMetadata("channelId", ev.SourceObject.Channel.ID)
	switch ev.SourceObject.Typename {
	case "Checkout":
		params.AddMetadata("checkoutId", ev.SourceObject.ID)
	case "Order":
		params.AddMetadata("orderId", ev.SourceObject.ID)
	}
	return params, nil
}

func sessionResponse(strategy transaction.FlowStrategy, intent *stripe.PaymentIntent, publishableKey string, withTime bool) (*SessionResponse, error) {
	result, err := transaction.ResultForIntentStatus(strategy, string(intent.Status))
	if err != nil {
		return nil, err
	}
	amount, err := currency.ToMajorUnits(intent.Amount, string(intent.Currency))
	if err != nil {
		return nil, err
	}

	resp := &SessionResponse{
		PSPReference: intent.ID,
		Result:       string(result),
		Amount:       json.Number(amount.String()),
		Data: &SessionData{
			PaymentIntent:  ClientSecret{ClientSecret: intent.ClientSecret},
			PublishableKey: publishableKey,
		},
		Message:     lo.CoalesceOrEmpty(string(intent.CancellationReason), intent.Description),
		ExternalURL: transaction.ExternalURL(intent.ID),
	}
	if withTime && intent.Created > 0 {
		resp.Time = time.Unix(intent.Created, 0).UTC().Format(time.RFC3339)
	}
	return resp, nil
}
