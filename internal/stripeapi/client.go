// Package stripeapi is the thin layer between the app and the Stripe SDK.
package stripeapi

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
)

type Client interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	UpdatePaymentIntent(ctx context.Context, id string, params *stripe.PaymentIntentUpdateParams) (*stripe.PaymentIntent, error)
	CapturePaymentIntent(ctx context.Context, id string, amount int64) (*stripe.PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	CreateRefund(ctx context.Context, paymentIntentID string, amount *int64, metadata map[string]string) (*stripe.Refund, error)
	CreateWebhookEndpoint(ctx context.Context, url, description string, events []string) (*stripe.WebhookEndpoint, error)
	DeleteWebhookEndpoint(ctx context.Context, id string) error
	ValidateKeys(ctx context.Context, publishableKey string) error
}

// Factory returns a client authenticated with the secret key of one config entry.
type Factory func(secretKey string) Client

type sdkClient struct {
	sc        *stripe.Client
	secretKey string
}

func NewClient(secretKey string) Client {
	return &sdkClient{sc: stripe.NewClient(secretKey), secretKey: secretKey}
}

func (c *sdkClient) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	intent, err := c.sc.V1PaymentIntents.Create(ctx, params)
	return intent, errors.Wrap(err, "creating payment intent")
}

func (c *sdkClient) UpdatePaymentIntent(ctx context.Context, id string, params *stripe.PaymentIntentUpdateParams) (*stripe.PaymentIntent, error) {
	intent, err := c.sc.V1PaymentIntents.Update(ctx, id, params)
	return intent, errors.Wrapf(err, "updating payment intent %s", id)
}

func (c *sdkClient) CapturePaymentIntent(ctx context.Context, id string, amount int64) (*stripe.PaymentIntent, error) {
	intent, err := c.sc.V1PaymentIntents.Capture(ctx, id, &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(amount),
	})
	return intent, errors.Wrapf(err, "capturing payment intent %s", id)
}

func (c *sdkClient) CancelPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	intent, err := c.sc.V1PaymentIntents.Cancel(ctx, id, &stripe.PaymentIntentCancelParams{})
	return intent, errors.Wrapf(err, "canceling payment intent %s", id)
}

func (c *sdkClient) CreateRefund(ctx context.Context, paymentIntentID string, amount *int64, metadata map[string]string) (*stripe.Refund, error) {
	params := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        amount,
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	refund, err := c.sc.V1Refunds.Create(ctx, params)
	return refund, errors.Wrapf(err, "refunding payment intent %s", paymentIntentID)
}

func (c *sdkClient) CreateWebhookEndpoint(ctx context.Context, url, description string, events []string) (*stripe.WebhookEndpoint, error) {
	endpoint, err := c.sc.V1WebhookEndpoints.Create(ctx, &stripe.WebhookEndpointCreateParams{
		URL:           stripe.String(url),
		Description:   stripe.String(description),
		EnabledEvents: stripe.StringSlice(events),
	})
	return endpoint, errors.Wrap(err, "creating webhook endpoint")
}

func (c *sdkClient) DeleteWebhookEndpoint(ctx context.Context, id string) error {
	_, err := c.sc.V1WebhookEndpoints.Delete(ctx, id, &stripe.WebhookEndpointDeleteParams{})
	return errors.Wrapf(err, "deleting webhook endpoint %s", id)
}

// ValidateKeys makes an authenticated call with the secret key and checks
// that the publishable key belongs to the same environment.
func (c *sdkClient) ValidateKeys(ctx context.Context, publishableKey string) error {
	if !strings.HasPrefix(c.secretKey, "sk_") && !strings.HasPrefix(c.secretKey, "rk_") {
		return errors.New("secret key should start with sk_ or rk_")
	}
	if !strings.HasPrefix(publishableKey, "pk_") {
		return errors.New("publishable key should start with pk_")
	}
	if Environment(c.secretKey) != Environment(publishableKey) {
		return errors.New("secret key and publishable key belong to different environments")
	}

	params := &stripe.PaymentIntentListParams{}
	params.Limit = stripe.Int64(1)
	for _, err := range c.sc.V1PaymentIntents.List(ctx, params) {
		if err != nil {
			return errors.Wrap(err, "validating secret key")
		}
		break
	}
	return nil
}

// Environment is "live" for live mode keys and "test" otherwise.
func Environment(key string) string {
	if strings.HasPrefix(key, "sk_live_") || strings.HasPrefix(key, "pk_live_") || strings.HasPrefix(key, "rk_live_") {
		return "live"
	}
	return "test"
}
