// Package server exposes the app over HTTP: Saleor lifecycle endpoints,
// webhook receivers, the dashboard admin API and health probes.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"saleor-stripe-app/internal/apl"
	"saleor-stripe-app/internal/config"
	"saleor-stripe-app/internal/metadata"
	"saleor-stripe-app/internal/metrics"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/stripeapi"
	"saleor-stripe-app/internal/webhook"

	"github.com/pkg/errors"
	"github.com/rs/cors"
)

type SaleorAPI interface {
	FetchAppID(ctx context.Context, apiURL, token string) (string, error)
	FetchJWKS(ctx context.Context, apiURL string) (string, error)
	FetchChannels(ctx context.Context, auth model.AuthData) ([]model.Channel, error)
}

type StripeWebhooks interface {
	Process(ctx context.Context, d webhook.Delivery) (*webhook.Receipt, error)
}

type SaleorWebhooks interface {
	Dispatch(ctx context.Context, event, saleorAPIURL string, body []byte) (*webhook.Reply, error)
}

// ReadinessCheck fails when a dependency the app needs is not reachable.
type ReadinessCheck func(ctx context.Context) error

type Deps struct {
	Config         *config.Config
	APL            apl.APL
	Configs        metadata.Manager
	Saleor         SaleorAPI
	Stripe         stripeapi.Factory
	StripeWebhooks StripeWebhooks
	SaleorWebhooks SaleorWebhooks
	Readiness      []ReadinessCheck
	Version        string
	Logger         *slog.Logger
}

type Server struct {
	Deps
}

func New(deps Deps) *Server {
	return &Server{Deps: deps}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /liveness", s.liveness)
	mux.HandleFunc("GET /readiness", s.readiness)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/manifest", s.manifest)
	mux.HandleFunc("POST /api/register", s.register)

	mux.HandleFunc("POST /api/webhooks/stripe", s.stripeWebhook)
	mux.HandleFunc("POST /api/webhooks/saleor/{event}", s.saleorWebhook)

	mux.Handle("GET /api/configurations", s.dashboard(s.listConfigurations))
	mux.Handle("POST /api/configurations", s.dashboard(s.createConfiguration))
	mux.Handle("GET /api/configurations/{id}", s.dashboard(s.getConfiguration))
	mux.Handle("PATCH /api/configurations/{id}", s.dashboard(s.updateConfiguration))
	mux.Handle("DELETE /api/configurations/{id}", s.dashboard(s.deleteConfiguration))
	mux.Handle("GET /api/channel-mapping", s.dashboard(s.getChannelMapping))
	mux.Handle("PUT /api/channel-mapping", s.dashboard(s.setChannelMapping))

	c := cors.New(cors.Options{
		AllowedOrigins: s.Config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", authorizationHeader, saleorAPIURLHeader},
	})

	return s.withRequestContext(c.Handler(mux))
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.Config.Server.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.InfoContext(ctx, "Starting HTTP server", "port", s.Config.Server.Port, "version", s.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := time.Duration(s.Config.Server.ShutdownTimeout) * time.Millisecond
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.Logger.Info("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
