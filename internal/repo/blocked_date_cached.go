package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"appointly/internal/core/cache"
	"appointly/internal/domain"
	"appointly/internal/service/ports"
)

const blockedDatesKey = "appointly:blocked-dates"

// CachedBlockedDateRepo 列表走 Redis 缓存，写入后失效；IsBlocked 直接查库
type CachedBlockedDateRepo struct {
	ports.BlockedDateRepo
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedBlockedDateRepo(inner ports.BlockedDateRepo, c *cache.Cache, ttl time.Duration, log *zap.Logger) *CachedBlockedDateRepo {
	return &CachedBlockedDateRepo{BlockedDateRepo: inner, cache: c, ttl: ttl, log: log}
}

func (r *CachedBlockedDateRepo) List(ctx context.Context) ([]domain.BlockedDate, error) {
	out, err := cache.GetOrLoadJSON(r.cache, ctx, blockedDatesKey, r.ttl, r.BlockedDateRepo.List)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.BlockedDate{}, nil
	}
	return out, nil
}

func (r *CachedBlockedDateRepo) Create(ctx context.Context, d *domain.BlockedDate) error {
	if err := r.BlockedDateRepo.Create(ctx, d); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedBlockedDateRepo) Delete(ctx context.Context, id string) error {
	if err := r.BlockedDateRepo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedBlockedDateRepo) invalidate(ctx context.Context) {
	if err := r.cache.Del(ctx, blockedDatesKey); err != nil {
		r.log.Warn("invalidate blocked dates cache failed", zap.Error(err))
	}
}
