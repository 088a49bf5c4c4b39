package webhook

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Payloads of the Saleor synchronous payment webhooks, shaped by the
// subscription queries in the app manifest.

type Channel struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

type SourceObject struct {
	Typename string  `json:"__typename"`
	ID       string  `json:"id"`
	Channel  Channel `json:"channel"`
}

type TransactionAction struct {
	Amount     decimal.NullDecimal `json:"amount"`
	Currency   string              `json:"currency"`
	ActionType string              `json:"actionType"`
}

type Transaction struct {
	ID           string        `json:"id"`
	PSPReference string        `json:"pspReference"`
	Checkout     *SourceObject `json:"checkout"`
	Order        *SourceObject `json:"order"`
}

// Source is the checkout or order the transaction belongs to.
func (t Transaction) Source() *SourceObject {
	if t.Checkout != nil {
		return t.Checkout
	}
	return t.Order
}

type GatewayInitializeEvent struct {
	SourceObject SourceObject    `json:"sourceObject"`
	Amount       decimal.Decimal `json:"amount"`
	Data         json.RawMessage `json:"data"`
}

// SessionEvent is the payload of TRANSACTION_INITIALIZE_SESSION and
// TRANSACTION_PROCESS_SESSION.
type SessionEvent struct {
	Action            TransactionAction `json:"action"`
	Transaction       Transaction       `json:"transaction"`
	SourceObject      SourceObject      `json:"sourceObject"`
	MerchantReference string            `json:"merchantReference"`
	Data              json.RawMessage   `json:"data"`
}

// ActionRequestEvent is the payload of the charge, refund and cancelation requests.
type ActionRequestEvent struct {
	Action      TransactionAction `json:"action"`
	Transaction Transaction       `json:"transaction"`
}

// sessionData is the part of the storefront supplied data the app passes on to Stripe.
type sessionData struct {
	Description      string            `json:"description"`
	ReceiptEmail     string            `json:"receipt_email"`
	SetupFutureUsage string            `json:"setup_future_usage"`
	PaymentMethod    string            `json:"payment_method"`
	Metadata         map[string]string `json:"metadata"`
}

type GatewayResponse struct {
	Data GatewayData `json:"data"`
}

type GatewayData struct {
	PublishableKey string `json:"publishableKey"`
}

type SessionResponse struct {
	PSPReference string       `json:"pspReference"`
	Result       string       `json:"result"`
	Amount       json.Number  `json:"amount"`
	Data         *SessionData `json:"data,omitempty"`
	Time         string       `json:"time,omitempty"`
	Message      string       `json:"message"`
	ExternalURL  string       `json:"externalUrl,omitempty"`
}

type SessionData struct {
	PaymentIntent  ClientSecret `json:"paymentIntent"`
	PublishableKey string       `json:"publishableKey"`
}

type ClientSecret struct {
	ClientSecret string `json:"client_secret"`
}

// ActionResponse answers charge, refund and cancelation requests. Only
// pspReference is set while Stripe has not settled the action yet.
type ActionResponse struct {
	PSPReference string      `json:"pspReference"`
	Result       string      `json:"result,omitempty"`
	Amount       json.Number `json:"amount,omitempty"`
	Message      string      `json:"message,omitempty"`
	ExternalURL  string      `json:"externalUrl,omitempty"`
	Actions      []string    `json:"actions,omitempty"`
}
