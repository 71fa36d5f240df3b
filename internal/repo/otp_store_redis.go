package repo

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOTPStore 验证码放 Redis，过期交给 TTL
type RedisOTPStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisOTPStore(rdb *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{rdb: rdb, prefix: "appointly:otp:"}
}

func (s *RedisOTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.prefix+email, code, ttl).Err(); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	got, err := s.rdb.Get(ctx, s.prefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify otp: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(code)) == 1, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	if err := s.rdb.Del(ctx, s.prefix+email).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
