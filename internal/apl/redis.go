package apl

import (
	"context"
	"encoding/json"
	"sort"

	"saleor-stripe-app/internal/model"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "saleor-stripe-app:apl:"

type RedisAPL struct {
	client *redis.Client
}

func NewRedisAPL(client *redis.Client) *RedisAPL {
	return &RedisAPL{client: client}
}

func (a *RedisAPL) Get(ctx context.Context, saleorAPIURL string) (*model.AuthData, error) {
	raw, err := a.client.Get(ctx, keyPrefix+saleorAPIURL).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading auth data")
	}

	var auth model.AuthData
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, errors.Wrap(err, "decoding auth data")
	}
	return &auth, nil
}

func (a *RedisAPL) Set(ctx context.Context, auth model.AuthData) error {
	raw, err := json.Marshal(auth)
	if err != nil {
		return err
	}
	return errors.Wrap(a.client.Set(ctx, keyPrefix+auth.SaleorAPIURL, raw, 0).Err(), "writing auth data")
}

func (a *RedisAPL) Delete(ctx context.Context, saleorAPIURL string) error {
	return errors.Wrap(a.client.Del(ctx, keyPrefix+saleorAPIURL).Err(), "deleting auth data")
}

func (a *RedisAPL) GetAll(ctx context.Context) ([]model.AuthData, error) {
	var result []model.AuthData
	iter := a.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := a.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading auth data")
		}
		var auth model.AuthData
		if err := json.Unmarshal(raw, &auth); err != nil {
			return nil, errors.Wrap(err, "decoding auth data")
		}
		result = append(result, auth)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning auth data")
	}

	sort.Slice(result, func(i, j int) bool { return result[i].SaleorAPIURL < result[j].SaleorAPIURL })
	return result, nil
}

func (a *RedisAPL) IsReady(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
