package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON 以 JSON 缓存 load 的结果；缓存内容无法解析时删掉并回源一次
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	raw := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, raw)
	if err != nil {
		return zero, err
	}
	var out T
	if json.Unmarshal(b, &out) == nil {
		return out, nil
	}

	_ = c.Del(ctx, key)
	if b, err = c.GetOrLoad(ctx, key, ttl, raw); err != nil {
		return zero, err
	}
	out = zero
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
