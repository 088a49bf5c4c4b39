package server

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/webhook"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	saleorAPIURLHeader    = "Saleor-Api-Url"
	saleorSignatureHeader = "Saleor-Signature"
	saleorEventHeader     = "Saleor-Event"
	stripeSignatureHeader = "Stripe-Signature"
	authorizationHeader   = "Authorization-Bearer"
)

type manifestWebhook struct {
	Name       string   `json:"name"`
	SyncEvents []string `json:"syncEvents"`
	Query      string   `json:"query"`
	TargetURL  string   `json:"targetUrl"`
	IsActive   bool     `json:"isActive"`
}

type appManifest struct {
	ID                    string            `json:"id"`
	Version               string            `json:"version"`
	Name                  string            `json:"name"`
	About                 string            `json:"about"`
	Permissions           []string          `json:"permissions"`
	AppURL                string            `json:"appUrl"`
	TokenTargetURL        string            `json:"tokenTargetUrl"`
	RequiredSaleorVersion string            `json:"requiredSaleorVersion"`
	Webhooks              []manifestWebhook `json:"webhooks"`
	Extensions            []any             `json:"extensions"`
}

type registerRequest struct {
	AuthToken string `json:"auth_token"`
}

func (s *Server) baseURL(r *http.Request) string {
	if s.Config.App.URL != "" {
		return strings.TrimRight(s.Config.App.URL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := lo.CoalesceOrEmpty(r.Header.Get("X-Forwarded-Host"), r.Host)
	return scheme + "://" + host
}

func (s *Server) manifest(w http.ResponseWriter, r *http.Request) {
	baseURL := s.baseURL(r)

	webhooks := lo.Map(webhook.SyncWebhooks, func(wh webhook.SyncWebhook, _ int) manifestWebhook {
		return manifestWebhook{
			Name:       wh.Name,
			SyncEvents: []string{wh.Event},
			Query:      wh.Query,
			TargetURL:  baseURL + wh.Path,
			IsActive:   true,
		}
	})

	writeJSON(w, http.StatusOK, appManifest{
		ID:                    "app.saleor.stripe",
		Version:               s.Version,
		Name:                  s.Config.App.Name,
		About:                 "Saleor payment app for Stripe",
		Permissions:           []string{"HANDLE_PAYMENTS"},
		AppURL:                baseURL,
		TokenTargetURL:        baseURL + "/api/register",
		RequiredSaleorVersion: ">=3.13",
		Webhooks:              webhooks,
		Extensions:            []any{},
	})
}

// register is called by Saleor on installation to hand over the app token.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	saleorAPIURL := r.Header.Get(saleorAPIURLHeader)
	if saleorAPIURL == "" {
		s.writeError(w, r, errors.WithStack(apperror.ErrMissingTenant))
		return
	}
	if err := s.checkAllowedDomain(saleorAPIURL); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.AuthToken == "" {
		s.writeError(w, r, errors.Wrap(apperror.ErrInvalidInput, "missing auth_token"))
		return
	}

	appID, err := s.Saleor.FetchAppID(ctx, saleorAPIURL, req.AuthToken)
	if err != nil {
		s.writeError(w, r, errors.Wrap(apperror.ErrUnauthorized, err.Error()))
		return
	}
	jwks, err := s.Saleor.FetchJWKS(ctx, saleorAPIURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	auth := model.AuthData{SaleorAPIURL: saleorAPIURL, Token: req.AuthToken, AppID: appID, JWKS: jwks}
	if err := s.APL.Set(ctx, auth); err != nil {
		s.writeError(w, r, errors.Wrap(err, "saving auth data"))
		return
	}

	s.Logger.InfoContext(ctx, "App registered", "saleorApiUrl", saleorAPIURL, "appId", appID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) checkAllowedDomain(saleorAPIURL string) error {
	pattern := s.Config.App.AllowedDomainPattern
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errors.Wrap(err, "compiling allowed domain pattern")
	}
	if !re.MatchString(saleorAPIURL) {
		return errors.Wrapf(apperror.ErrUnauthorized, "saleor url %s is not allowed", saleorAPIURL)
	}
	return nil
}

// authData loads the tenant's auth data, failing when the app is not installed there.
func (s *Server) authData(ctx context.Context, saleorAPIURL string) (*model.AuthData, error) {
	if saleorAPIURL == "" {
		return nil, errors.WithStack(apperror.ErrMissingTenant)
	}
	auth, err := s.APL.Get(ctx, saleorAPIURL)
	if err != nil {
		return nil, errors.Wrap(err, "loading auth data")
	}
	if auth == nil {
		return nil, errors.WithStack(apperror.ErrMissingAuthData)
	}
	return auth, nil
}

// verifyWithJWKS runs verify against the cached key set and retries once
// with a freshly fetched one, which is stored when it changed.
func (s *Server) verifyWithJWKS(ctx context.Context, auth *model.AuthData, verify func(jwks string) error) error {
	var err error
	if auth.JWKS != "" {
		if err = verify(auth.JWKS); err == nil {
			return nil
		}
	}

	jwks, fetchErr := s.Saleor.FetchJWKS(ctx, auth.SaleorAPIURL)
	if fetchErr != nil {
		if err != nil {
			return err
		}
		return fetchErr
	}
	if jwks != auth.JWKS {
		s.Logger.InfoContext(ctx, "Saleor JWKS changed, updating auth data")
		updated := *auth
		updated.JWKS = jwks
		if setErr := s.APL.Set(ctx, updated); setErr != nil {
			s.Logger.WarnContext(ctx, "Error saving refreshed JWKS", "error", setErr)
		}
	}
	return verify(jwks)
}
