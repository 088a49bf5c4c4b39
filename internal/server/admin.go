package server

import (
	"context"
	"net/http"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/paymentconfig"
	"saleor-stripe-app/internal/saleor"

	"github.com/pkg/errors"
)

type dashboardHandler func(w http.ResponseWriter, r *http.Request, auth *model.AuthData)

type channelMappingRequest struct {
	ChannelID       string  `json:"channelId"`
	ConfigurationID *string `json:"configurationId"`
}

// dashboard authenticates requests coming from the Saleor dashboard with the
// token Saleor issued for the logged in staff user.
func (s *Server) dashboard(next dashboardHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		auth, err := s.authData(ctx, r.Header.Get(saleorAPIURLHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		token := r.Header.Get(authorizationHeader)
		if token == "" {
			s.writeError(w, r, errors.Wrap(apperror.ErrUnauthorized, "missing token"))
			return
		}
		err = s.verifyWithJWKS(ctx, auth, func(jwks string) error {
			_, err := saleor.VerifyToken(jwks, token, auth.AppID)
			return err
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next(w, r, auth)
	})
}

func (s *Server) configManager(auth *model.AuthData) *paymentconfig.Manager {
	store := paymentconfig.NewStore(s.Configs, auth.SaleorAPIURL)
	return paymentconfig.NewManager(store, s.Stripe, s.Config.App.URL, s.Config.Stripe.WebhookDescription, s.Logger)
}

func (s *Server) listConfigurations(w http.ResponseWriter, r *http.Request, auth *model.AuthData) {
	entries, err := s.configManager(auth).ListConfigEntries(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) createConfiguration(w http.ResponseWriter, r *http.Request, auth *model.AuthData) {
	var form paymentconfig.EntryForm
	if err := decodeBody(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}

	entry, err := s.configManager(auth).AddConfigEntry(r.Context(), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) getConfiguration(w http.ResponseWriter, r *http.Request, auth *model.AuthData) {
	entry, err := s.configManager(auth).GetConfigEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) updateConfiguration(w http.ResponseWriter, r *http.Request, auth *model.AuthData) {
	var update paymentconfig.EntryUpdate
	if err := decodeBody(r, &update); err != nil {
		s.writeError(w, r, err)
		return
	}

	entry, err := s.configManager(auth).UpdateConfigEntry(r.Context(), r.PathValue("id"), update)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) deleteConfiguration(w http.ResponseWriter, r *http.Request, auth *model.AuthData) {
	if err := s.configManager(auth).DeleteConfigEntry(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getChannelMapping(w http.ResponseWriter, r *http.Request, auth *model.AuthData) {
	mapping, err := s.channelMapping(r.Context(), auth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}

func (s *Server) channelMapping(ctx context.Context, auth *model.AuthData) (model.ChannelMapping, error) {
	channels, err := s.Saleor.FetchChannels(ctx, *auth)
	if err != nil {
		return nil, errors.Wrap(err, "fetching channels")
	}
	return s.configManager(auth).GetMapping(ctx, channels)
}

func (s *Server) setChannelMapping(w http.ResponseWriter, r *http.Request, auth *model.AuthData) {
	var req channelMappingRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	mapping, err := s.configManager(auth).SetMapping(r.Context(), req.ChannelID, req.ConfigurationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}
