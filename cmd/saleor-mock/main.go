// Command saleor-mock is a stand-in Saleor GraphQL API for running the app
// locally without a Saleor instance.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	port  string
	appID string
)

func main() {
	cmd := &cobra.Command{
		Use:   "saleor-mock",
		Short: "Serve a minimal Saleor GraphQL API",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
			mock := newMockSaleor(appID, logger)

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           loggingMiddleware(logger, mock.Handler()),
				ReadHeaderTimeout: 10 * time.Second,
			}
			logger.Info("Starting saleor mock", "port", port, "appId", appID)
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&port, "port", "8085", "listen port")
	cmd.Flags().StringVar(&appID, "app-id", "QXBwOjE=", "id returned for the app")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
