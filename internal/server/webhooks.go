package server

import (
	"net/http"
	"strings"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/saleor"
	"saleor-stripe-app/internal/webhook"

	"github.com/pkg/errors"
)

type stripeWebhookResponse struct {
	EventID          string `json:"eventId"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

func (s *Server) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	receipt, err := s.StripeWebhooks.Process(r.Context(), webhook.Delivery{
		SaleorAPIURL: r.URL.Query().Get("saleorApiUrl"),
		Signature:    r.Header.Get(stripeSignatureHeader),
		Body:         body,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if receipt == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, stripeWebhookResponse{EventID: receipt.EventID, AlreadyProcessed: receipt.AlreadyProcessed})
}

func (s *Server) saleorWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	event, ok := webhook.EventForPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if header := r.Header.Get(saleorEventHeader); header != "" && !strings.EqualFold(header, event) {
		s.writeError(w, r, errors.Wrapf(apperror.ErrInvalidInput, "unexpected saleor event %s", header))
		return
	}

	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	saleorAPIURL := r.Header.Get(saleorAPIURLHeader)
	auth, err := s.authData(ctx, saleorAPIURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	signature := r.Header.Get(saleorSignatureHeader)
	if signature == "" {
		s.writeError(w, r, errors.Wrap(apperror.ErrUnauthorized, "missing saleor signature"))
		return
	}
	err = s.verifyWithJWKS(ctx, auth, func(jwks string) error {
		return saleor.VerifySignature(jwks, body, signature)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reply, err := s.SaleorWebhooks.Dispatch(ctx, event, saleorAPIURL, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, reply.Status, reply.Body)
}
