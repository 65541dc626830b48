// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"code.hybscloud.com/eff"
)

// Cache adapts a Redis client to the byte-cache capability. Redis
// expires keys silently, so every miss reports as absent.
type Cache struct {
	client goredis.UniversalClient
}

var _ eff.CacheStore = (*Cache)(nil)

// NewCache wraps client. The caller keeps ownership of the client and
// its lifecycle.
func NewCache(client goredis.UniversalClient) *Cache {
	return &Cache{client: client}
}

// Get reads key and its remaining TTL in one MULTI/EXEC round trip.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, time.Duration, eff.MissReason, error) {
	var (
		get *goredis.StringCmd
		ttl *goredis.DurationCmd
	)
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		get = pipe.Get(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	// TxPipelined surfaces the first command error, a Nil included.
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, 0, "", classify(err)
	}
	value, err := get.Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, 0, eff.MissAbsent, nil
	}
	if err != nil {
		return nil, 0, "", classify(err)
	}
	remaining, err := ttl.Result()
	if err != nil {
		return nil, 0, "", classify(err)
	}
	// TTL returns -1 for keys without expiry and -2 for keys gone
	// between the two commands; neither negative value is a lifetime.
	if remaining < 0 {
		remaining = 0
	}
	return value, remaining, "", nil
}

// Put writes key with ttl, overwriting any previous value and expiry.
func (c *Cache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return classify(err)
	}
	return nil
}
