package webhook

import (
	"net/http"

	"saleor-stripe-app/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func (s *PaymentsTestSuite) TestDispatch_Success() {
	s.stripe.Intent = &stripe.PaymentIntent{ID: "pi_1", Amount: 2000, AmountReceived: 2000, Currency: "usd", Status: stripe.PaymentIntentStatusSucceeded}

	reply, err := s.sut.Dispatch(s.ctx, EventTransactionChargeRequested, saleorAPIURL, []byte(chargeEvent))

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, reply.Status)
	resp, ok := reply.Body.(*ActionResponse)
	require.True(s.T(), ok)
	assert.Equal(s.T(), "CHARGE_SUCCESS", resp.Result)
}

func (s *PaymentsTestSuite) TestDispatch_FailureResult() {
	body := `{
		"action": {"amount": 20, "currency": "USD", "actionType": "REFUND"},
		"transaction": {"id": "420", "pspReference": "pi_1", "order": {"__typename": "Order", "id": "o1", "channel": {"id": "3"}}}
	}`

	reply, err := s.sut.Dispatch(s.ctx, EventTransactionRefundRequested, saleorAPIURL, []byte(body))

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, reply.Status)
	resp, ok := reply.Body.(*ActionResponse)
	require.True(s.T(), ok)
	assert.Equal(s.T(), "REFUND_FAILURE", resp.Result)
	assert.Contains(s.T(), resp.Message, "channel has no fully configured stripe entry")
	assert.NotEmpty(s.T(), resp.PSPReference)
	assert.Empty(s.T(), s.stripe.Refunds)
}

func (s *PaymentsTestSuite) TestDispatch_SessionFailureKeepsStrategy() {
	body := `{
		"action": {"amount": 12.5, "currency": "EUR", "actionType": "AUTHORIZATION"},
		"transaction": {"id": "420"},
		"sourceObject": {"__typename": "Checkout", "id": "c1", "channel": {"id": "3"}}
	}`

	reply, err := s.sut.Dispatch(s.ctx, EventTransactionInitializeSession, saleorAPIURL, []byte(body))

	require.NoError(s.T(), err)
	resp, ok := reply.Body.(*SessionResponse)
	require.True(s.T(), ok)
	assert.Equal(s.T(), "AUTHORIZATION_FAILURE", resp.Result)
	assert.Equal(s.T(), "12.5", resp.Amount.String())
}

func (s *PaymentsTestSuite) TestDispatch_Errors() {
	_, err := s.sut.Dispatch(s.ctx, "CHECKOUT_CREATED", saleorAPIURL, []byte(`{}`))
	assert.ErrorIs(s.T(), err, apperror.ErrInvalidInput)

	_, err = s.sut.Dispatch(s.ctx, EventTransactionChargeRequested, saleorAPIURL, []byte(`not json`))
	assert.ErrorIs(s.T(), err, apperror.ErrInvalidInput)

	_, err = s.sut.Dispatch(s.ctx, EventPaymentGatewayInitializeSession, saleorAPIURL,
		[]byte(`{"sourceObject": {"id": "c1", "channel": {"id": "3"}}}`))
	assert.ErrorIs(s.T(), err, apperror.ErrMissingConfiguration)
}

func (s *PaymentsTestSuite) TestEventForPath() {
	event, ok := EventForPath("/api/webhooks/saleor/transaction-refund-requested")
	assert.True(s.T(), ok)
	assert.Equal(s.T(), EventTransactionRefundRequested, event)

	_, ok = EventForPath("/api/webhooks/saleor/unknown")
	assert.False(s.T(), ok)
}
