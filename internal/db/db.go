package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"saleor-stripe-app/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func GetConnStr(cfg config.Database) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", cfg.User, cfg.Password, cfg.Host, cfg.Port,
		cfg.Name, cfg.SSLMode)
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(connStr string) error {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return errors.Wrap(goose.Up(db, "migrations"), "applying migrations")
}

func GetPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	return dbpool, nil
}
