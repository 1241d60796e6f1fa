package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"sweetindulgence/internal/domain"
)

const notFoundMarker = "notfound"

// LoadFunc fetches a product detail from the database.
type LoadFunc func(ctx context.Context, id string) (*domain.ProductDetail, error)

// ProductCache is a read-through cache for product details. A nil client
// turns every call into a direct load. Redis failures are logged and the
// database answers instead.
type ProductCache struct {
	redis       *redis.Client
	ttl         time.Duration
	notFoundTTL time.Duration
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{redis: rdb, ttl: 5 * time.Minute, notFoundTTL: time.Minute}
}

func productKey(id string) string { return "product:" + id }

// versionKey is bumped by Invalidate. A load only gets cached when the
// version it started under is still current.
func versionKey(id string) string { return "product:ver:" + id }

func (c *ProductCache) version(ctx context.Context, id string) string {
	v, err := c.redis.Get(ctx, versionKey(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("[cache] version read failed for %s: %v", id, err)
	}
	return v
}

// store writes val unless the product was invalidated after ver was read.
func (c *ProductCache) store(ctx context.Context, id, ver string, val any, ttl time.Duration) {
	vk := versionKey(id)
	err := c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != ver {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, productKey(id), val, ttl)
			return nil
		})
		return err
	}, vk)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		log.Printf("[cache] failed to cache product %s: %v", id, err)
	}
}

func (c *ProductCache) Get(ctx context.Context, id string, load LoadFunc) (*domain.ProductDetail, error) {
	if c == nil || c.redis == nil {
		return load(ctx, id)
	}
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, domain.NotFound("Product not found")
		}
		var p domain.ProductDetail
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		log.Printf("[cache] bad cached product %s (continuing with DB): %v", id, err)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("[cache] redis error (continuing with DB): %v", err)
	}

	ver := c.version(ctx, id)
	p, err := load(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.store(ctx, id, ver, notFoundMarker, c.notFoundTTL)
		}
		return nil, err
	}

	b, err := json.Marshal(p)
	if err != nil {
		log.Printf("[cache] failed to marshal product %s: %v", id, err)
		return p, nil
	}
	c.store(ctx, id, ver, b, c.ttl)
	return p, nil
}

// Invalidate drops cached details for the given products.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) {
	if c == nil || c.redis == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			keys[i] = productKey(id)
			pipe.Incr(ctx, versionKey(id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		log.Printf("[cache] failed to invalidate %v: %v", keys, err)
	}
}
