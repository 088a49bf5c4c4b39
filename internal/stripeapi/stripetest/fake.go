// Package stripetest provides an in-memory stripeapi.Client for tests.
package stripetest

import (
	"context"
	"fmt"
	"sync"

	"saleor-stripe-app/internal/stripeapi"

	"github.com/stripe/stripe-go/v82"
)

type Refund struct {
	PaymentIntentID string
	Amount          *int64
	Metadata        map[string]string
}

// Client records calls and answers with the configured responses.
type Client struct {
	mu sync.Mutex

	SecretKey string

	Intent        *stripe.PaymentIntent
	RefundResult  *stripe.Refund
	Err           error
	ValidateErr   error
	WebhookSecret string

	CreateParams     []*stripe.PaymentIntentCreateParams
	UpdateParams     []*stripe.PaymentIntentUpdateParams
	Captured         map[string]int64
	Canceled         []string
	Refunds          []Refund
	CreatedWebhooks  []string
	DeletedWebhooks  []string
	nextWebhookIndex int
}

func NewClient() *Client {
	return &Client{Captured: map[string]int64{}, WebhookSecret: "whsec_test"}
}

// Factory returns the same fake for any secret key and remembers the last one used.
func (c *Client) Factory() stripeapi.Factory {
	return func(secretKey string) stripeapi.Client {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.SecretKey = secretKey
		return c
	}
}

func (c *Client) CreatePaymentIntent(_ context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CreateParams = append(c.CreateParams, params)
	return c.Intent, c.Err
}

func (c *Client) UpdatePaymentIntent(_ context.Context, _ string, params *stripe.PaymentIntentUpdateParams) (*stripe.PaymentIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UpdateParams = append(c.UpdateParams, params)
	return c.Intent, c.Err
}

func (c *Client) CapturePaymentIntent(_ context.Context, id string, amount int64) (*stripe.PaymentIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Captured[id] = amount
	return c.Intent, c.Err
}

func (c *Client) CancelPaymentIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Canceled = append(c.Canceled, id)
	return c.Intent, c.Err
}

func (c *Client) CreateRefund(_ context.Context, paymentIntentID string, amount *int64, metadata map[string]string) (*stripe.Refund, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Refunds = append(c.Refunds, Refund{PaymentIntentID: paymentIntentID, Amount: amount, Metadata: metadata})
	return c.RefundResult, c.Err
}

func (c *Client) CreateWebhookEndpoint(_ context.Context, url, _ string, events []string) (*stripe.WebhookEndpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.nextWebhookIndex++
	c.CreatedWebhooks = append(c.CreatedWebhooks, url)
	return &stripe.WebhookEndpoint{
		ID:            fmt.Sprintf("we_%d", c.nextWebhookIndex),
		URL:           url,
		Secret:        c.WebhookSecret,
		EnabledEvents: events,
	}, nil
}

func (c *Client) DeleteWebhookEndpoint(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeletedWebhooks = append(c.DeletedWebhooks, id)
	return c.Err
}

func (c *Client) ValidateKeys(_ context.Context, _ string) error {
	return c.ValidateErr
}
