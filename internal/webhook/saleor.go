package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/transaction"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
)

func saleorWebhookCounter(event, result string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`saleor_webhook_total{event=%q,result=%q}`, event, result))
}

// Reply is what goes back to Saleor for a synchronous webhook.
type Reply struct {
	Status int
	Body   any
}

// Dispatch decodes a synchronous webhook payload and runs the matching
// handler. Recoverable errors become failure results with status 200.
func (p *Payments) Dispatch(ctx context.Context, event, saleorAPIURL string, body []byte) (*Reply, error) {
	switch event {
	case EventPaymentGatewayInitializeSession:
		return dispatch(ctx, p, event, body,
			func(ctx context.Context, ev GatewayInitializeEvent) (any, error) {
				return p.PaymentGatewayInitializeSession(ctx, saleorAPIURL, ev)
			}, nil)
	case EventTransactionInitializeSession:
		return dispatch(ctx, p, event, body,
			func(ctx context.Context, ev SessionEvent) (any, error) {
				return p.TransactionInitializeSession(ctx, saleorAPIURL, ev)
			},
			func(ev SessionEvent, err error) any { return SessionFailure(ev, err) })
	case EventTransactionProcessSession:
		return dispatch(ctx, p, event, body,
			func(ctx context.Context, ev SessionEvent) (any, error) {
				return p.TransactionProcessSession(ctx, saleorAPIURL, ev)
			},
			func(ev SessionEvent, err error) any { return SessionFailure(ev, err) })
	case EventTransactionChargeRequested:
		return dispatch(ctx, p, event, body,
			func(ctx context.Context, ev ActionRequestEvent) (any, error) {
				return p.TransactionChargeRequested(ctx, saleorAPIURL, ev)
			},
			func(_ ActionRequestEvent, err error) any { return ActionFailure(transaction.ChargeFailure, err) })
	case EventTransactionRefundRequested:
		return dispatch(ctx, p, event, body,
			func(ctx context.Context, ev ActionRequestEvent) (any, error) {
				return p.TransactionRefundRequested(ctx, saleorAPIURL, ev)
			},
			func(_ ActionRequestEvent, err error) any { return ActionFailure(transaction.RefundFailure, err) })
	case EventTransactionCancelationRequested:
		return dispatch(ctx, p, event, body,
			func(ctx context.Context, ev ActionRequestEvent) (any, error) {
				return p.TransactionCancelationRequested(ctx, saleorAPIURL, ev)
			},
			func(_ ActionRequestEvent, err error) any { return ActionFailure(transaction.CancelFailure, err) })
	default:
		return nil, errors.Wrapf(apperror.ErrInvalidInput, "unsupported saleor event %q", event)
	}
}

// dispatch runs handle on the decoded payload. Without a failure mapper every
// error is returned to the caller.
func dispatch[E any](
	ctx context.Context,
	p *Payments,
	event string,
	body []byte,
	handle func(context.Context, E) (any, error),
	failure func(E, error) any,
) (*Reply, error) {
	var ev E
	if err := json.Unmarshal(body, &ev); err != nil {
		saleorWebhookCounter(event, "invalid_payload").Inc()
		return nil, errors.Wrap(apperror.ErrInvalidInput, err.Error())
	}

	p.logger.InfoContext(ctx, "Handling saleor webhook", "event", event)
	resp, err := handle(ctx, ev)
	if err == nil {
		saleorWebhookCounter(event, "success").Inc()
		return &Reply{Status: http.StatusOK, Body: resp}, nil
	}

	p.logger.ErrorContext(ctx, "Saleor webhook handler failed", "event", event, "error", err)
	if failure == nil || !Recoverable(err) {
		saleorWebhookCounter(event, "error").Inc()
		return nil, err
	}

	saleorWebhookCounter(event, "failure_result").Inc()
	return &Reply{Status: http.StatusOK, Body: failure(ev, err)}, nil
}

// EventForPath maps a webhook route back to its Saleor event.
func EventForPath(path string) (string, bool) {
	for _, w := range SyncWebhooks {
		if w.Path == path {
			return w.Event, true
		}
	}
	return "", false
}

