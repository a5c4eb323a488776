package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tienda/internal/dto"

	"github.com/redis/go-redis/v9"
)

const (
	precioCachePrefix = "precio:"
	PrecioCacheTTL    = 4 * time.Hour
)

// PrecioCache holds public price lookups keyed by SKU.
type PrecioCache interface {
	Get(ctx context.Context, sku string) (*dto.ConsultaPreciosResponse, bool)
	Set(ctx context.Context, sku string, resp dto.ConsultaPreciosResponse) error
	// Invalidar drops the entries of the given SKUs.
	Invalidar(ctx context.Context, skus ...string) error
}

type redisPrecioCache struct{ rdb *redis.Client }

func NewPrecioCache(rdb *redis.Client) PrecioCache { return &redisPrecioCache{rdb: rdb} }

func (c *redisPrecioCache) Get(ctx context.Context, sku string) (*dto.ConsultaPreciosResponse, bool) {
	cached, err := c.rdb.Get(ctx, precioCachePrefix+sku).Bytes()
	if err != nil {
		return nil, false
	}
	var resp dto.ConsultaPreciosResponse
	if err := json.Unmarshal(cached, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *redisPrecioCache) Set(ctx context.Context, sku string, resp dto.ConsultaPreciosResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, precioCachePrefix+sku, b, PrecioCacheTTL).Err()
}

func (c *redisPrecioCache) Invalidar(ctx context.Context, skus ...string) error {
	if len(skus) == 0 {
		return nil
	}
	keys := make([]string, 0, len(skus))
	for _, s := range skus {
		keys = append(keys, precioCachePrefix+s)
	}
	// 500 keys per DEL
	for len(keys) > 0 {
		n := min(len(keys), 500)
		if err := c.rdb.Del(ctx, keys[:n]...).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		keys = keys[n:]
	}
	return nil
}
