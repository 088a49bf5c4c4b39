package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"saleor-stripe-app/internal/apl"
	"saleor-stripe-app/internal/config"
	"saleor-stripe-app/internal/db"
	"saleor-stripe-app/internal/kafka"
	"saleor-stripe-app/internal/logging"
	"saleor-stripe-app/internal/metadata"
	"saleor-stripe-app/internal/metrics"
	"saleor-stripe-app/internal/saleor"
	"saleor-stripe-app/internal/server"
	"saleor-stripe-app/internal/stripeapi"
	"saleor-stripe-app/internal/webhook"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const (
	backendPostgres = "postgres"
	backendRedis    = "redis"
	backendMemory   = "memory"
	backendSaleor   = "saleor"
)

var appVersion = "dev"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.MustLoadConfig(configPath)
	logger := logging.GetLogger(cfg.Logs)
	slog.SetDefault(logger)
	metrics.Setup(cfg.Metrics, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.APL.Backend == backendPostgres || cfg.Metadata.Backend == backendPostgres {
		p, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
	}

	authStore, closeAPL, err := newAPL(cfg, pool)
	if err != nil {
		return err
	}
	defer closeAPL()

	saleorClient := saleor.NewClient(cfg.Saleor, logger)

	store, err := newMetadataStore(cfg.Metadata, authStore, saleorClient, pool)
	if err != nil {
		return err
	}
	configs, err := metadata.NewEncryptedManager(store, cfg.App.SecretKey)
	if err != nil {
		return errors.Wrap(err, "creating config encryption")
	}

	var journal webhook.Journal
	if w := kafka.NewWriter(cfg.Kafka); w != nil {
		defer w.Close()
		journal = kafka.NewJournal(w, logger)
		logger.Info("Publishing transaction reports", "topic", cfg.Kafka.Topic.TransactionReports)
	}

	srv := server.New(server.Deps{
		Config:         cfg,
		APL:            authStore,
		Configs:        configs,
		Saleor:         saleorClient,
		Stripe:         stripeapi.NewClient,
		StripeWebhooks: webhook.NewProcessor(authStore, configs, saleorClient, journal, logger),
		SaleorWebhooks: webhook.NewPayments(configs, stripeapi.NewClient, logger),
		Readiness:      []server.ReadinessCheck{authStore.IsReady},
		Version:        appVersion,
		Logger:         logger,
	})

	return srv.Run(ctx)
}

func openDatabase(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	connStr := db.GetConnStr(cfg)
	if err := db.RunMigrations(connStr); err != nil {
		return nil, errors.Wrap(err, "running migrations")
	}
	pool, err := db.GetPool(ctx, connStr)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	return pool, nil
}

func newAPL(cfg *config.Config, pool *pgxpool.Pool) (apl.APL, func(), error) {
	switch cfg.APL.Backend {
	case backendPostgres:
		return db.NewAuthDataRepository(pool), func() {}, nil
	case backendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return apl.NewRedisAPL(client), func() { _ = client.Close() }, nil
	case backendMemory:
		return apl.NewMemoryAPL(), func() {}, nil
	default:
		return nil, nil, errors.Errorf("unknown apl backend %q", cfg.APL.Backend)
	}
}

func newMetadataStore(cfg config.Metadata, authStore apl.APL, client *saleor.Client, pool *pgxpool.Pool) (metadata.Store, error) {
	switch cfg.Backend {
	case backendSaleor:
		return metadata.NewSaleorStore(authStore, client), nil
	case backendPostgres:
		return db.NewMetadataRepository(pool), nil
	case backendMemory:
		return metadata.NewMemoryStore(), nil
	default:
		return nil, errors.Errorf("unknown metadata backend %q", cfg.Backend)
	}
}
