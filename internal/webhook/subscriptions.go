package webhook

// SyncWebhook is one Saleor synchronous webhook the app registers in its manifest.
type SyncWebhook struct {
	Name  string
	Event string
	Path  string
	Query string
}

const (
	EventPaymentGatewayInitializeSession = "PAYMENT_GATEWAY_INITIALIZE_SESSION"
	EventTransactionInitializeSession    = "TRANSACTION_INITIALIZE_SESSION"
	EventTransactionProcessSession       = "TRANSACTION_PROCESS_SESSION"
	EventTransactionChargeRequested      = "TRANSACTION_CHARGE_REQUESTED"
	EventTransactionRefundRequested      = "TRANSACTION_REFUND_REQUESTED"
	EventTransactionCancelationRequested = "TRANSACTION_CANCELATION_REQUESTED"
	saleorWebhookRoutePrefix             = "/api/webhooks/saleor/"
)

const sourceObjectFragment = `
fragment SourceObject on OrderOrCheckout {
  __typename
  ... on Checkout { id channel { id slug } }
  ... on Order { id channel { id slug } }
}`

const actionRequestFields = `
    action { amount currency actionType }
    transaction {
      id
      pspReference
      checkout { ...SourceObject }
      order { ...SourceObject }
    }`

var SyncWebhooks = []SyncWebhook{
	{
		Name:  "PaymentGatewayInitializeSession",
		Event: EventPaymentGatewayInitializeSession,
		Path:  saleorWebhookRoutePrefix + "payment-gateway-initialize-session",
		Query: `subscription PaymentGatewayInitializeSession {
  event {
    ... on PaymentGatewayInitializeSession {
      amount
      data
      sourceObject { ...SourceObject }
    }
  }
}` + sourceObjectFragment,
	},
	{
		Name:  "TransactionInitializeSession",
		Event: EventTransactionInitializeSession,
		Path:  saleorWebhookRoutePrefix + "transaction-initialize-session",
		Query: `subscription TransactionInitializeSession {
  event {
    ... on TransactionInitializeSession {
      data
      merchantReference
      action { amount currency actionType }
      transaction { id pspReference }
      sourceObject { ...SourceObject }
    }
  }
}` + sourceObjectFragment,
	},
	{
		Name:  "TransactionProcessSession",
		Event: EventTransactionProcessSession,
		Path:  saleorWebhookRoutePrefix + "transaction-process-session",
		Query: `subscription TransactionProcessSession {
  event {
    ... on TransactionProcessSession {
      data
      merchantReference
      action { amount currency actionType }
      transaction { id pspReference }
      sourceObject { ...SourceObject }
    }
  }
}` + sourceObjectFragment,
	},
	{
		Name:  "TransactionChargeRequested",
		Event: EventTransactionChargeRequested,
		Path:  saleorWebhookRoutePrefix + "transaction-charge-requested",
		Query: `subscription TransactionChargeRequested {
  event {
    ... on TransactionChargeRequested {` + actionRequestFields + `
    }
  }
}` + sourceObjectFragment,
	},
	{
		Name:  "TransactionRefundRequested",
		Event: EventTransactionRefundRequested,
		Path:  saleorWebhookRoutePrefix + "transaction-refund-requested",
		Query: `subscription TransactionRefundRequested {
  event {
    ... on TransactionRefundRequested {` + actionRequestFields + `
    }
  }
}` + sourceObjectFragment,
	},
	{
		Name:  "TransactionCancelationRequested",
		Event: EventTransactionCancelationRequested,
		Path:  saleorWebhookRoutePrefix + "transaction-cancelation-requested",
		Query: `subscription TransactionCancelationRequested {
  event {
    ... on TransactionCancelationRequested {` + actionRequestFields + `
    }
  }
}` + sourceObjectFragment,
	},
}
