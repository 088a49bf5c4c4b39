package db

import (
	"context"

	"saleor-stripe-app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// MetadataRepository keeps encrypted app metadata values per Saleor instance.
type MetadataRepository struct {
	pool *pgxpool.Pool
}

func NewMetadataRepository(pool *pgxpool.Pool) *MetadataRepository {
	return &MetadataRepository{pool: pool}
}

func (r *MetadataRepository) Get(ctx context.Context, tenant, key string) (string, error) {
	query := `SELECT value FROM app_metadata WHERE tenant = $1 AND key = $2`

	var value string
	err := r.pool.QueryRow(ctx, query, tenant, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *MetadataRepository) Set(ctx context.Context, tenant, key, value string) error {
	query := `INSERT INTO app_metadata (tenant, key, value) VALUES ($1, $2, $3)
	          ON CONFLICT (tenant, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := r.pool.Exec(ctx, query, tenant, key, value)
	return err
}

func (r *MetadataRepository) Delete(ctx context.Context, tenant, key string) error {
	query := `DELETE FROM app_metadata WHERE tenant = $1 AND key = $2`
	_, err := r.pool.Exec(ctx, query, tenant, key)
	return err
}

// AuthDataRepository is the postgres backed APL.
type AuthDataRepository struct {
	pool *pgxpool.Pool
}

func NewAuthDataRepository(pool *pgxpool.Pool) *AuthDataRepository {
	return &AuthDataRepository{pool: pool}
}

// Get returns nil when the instance never registered.
func (r *AuthDataRepository) Get(ctx context.Context, saleorAPIURL string) (*model.AuthData, error) {
	query := `SELECT saleor_api_url, token, app_id, jwks FROM auth_data WHERE saleor_api_url = $1`

	var auth model.AuthData
	err := r.pool.QueryRow(ctx, query, saleorAPIURL).Scan(&auth.SaleorAPIURL, &auth.Token, &auth.AppID, &auth.JWKS)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &auth, nil
}

func (r *AuthDataRepository) Set(ctx context.Context, auth model.AuthData) error {
	query := `INSERT INTO auth_data (saleor_api_url, token, app_id, jwks) VALUES ($1, $2, $3, $4)
	          ON CONFLICT (saleor_api_url) DO UPDATE
	          SET token = EXCLUDED.token, app_id = EXCLUDED.app_id, jwks = EXCLUDED.jwks, updated_at = now()`
	_, err := r.pool.Exec(ctx, query, auth.SaleorAPIURL, auth.Token, auth.AppID, auth.JWKS)
	return err
}

func (r *AuthDataRepository) Delete(ctx context.Context, saleorAPIURL string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_data WHERE saleor_api_url = $1`, saleorAPIURL)
	return err
}

func (r *AuthDataRepository) GetAll(ctx context.Context) ([]model.AuthData, error) {
	rows, err := r.pool.Query(ctx, `SELECT saleor_api_url, token, app_id, jwks FROM auth_data ORDER BY saleor_api_url`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.AuthData
	for rows.Next() {
		var auth model.AuthData
		if err := rows.Scan(&auth.SaleorAPIURL, &auth.Token, &auth.AppID, &auth.JWKS); err != nil {
			return nil, err
		}
		result = append(result, auth)
	}
	return result, rows.Err()
}

func (r *AuthDataRepository) IsReady(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
