package ports

import (
	"context"

	"appointly/internal/domain"
)

type SlotRepo interface {
	Create(ctx context.Context, s *domain.TimeSlot) error
	GetByID(ctx context.Context, id string) (*domain.TimeSlot, error)
	List(ctx context.Context, f domain.SlotFilter) ([]domain.TimeSlot, error)
	Count(ctx context.Context) (int64, error)
	// Delete 仅在 booked_count = 0 时删除；不存在返回 NotFound，有占用返回 Conflict
	Delete(ctx context.Context, id string) error
	// AdjustBookedCount 条件更新，保证 0 <= booked_count <= capacity
	AdjustBookedCount(ctx context.Context, id string, delta int) error
}

// SlotLedger 预约账本对时段的依赖；只有时段账本能修改已约数
type SlotLedger interface {
	AdjustBookedCount(ctx context.Context, slotID string, delta int) error
}

type BlockedDateRepo interface {
	Create(ctx context.Context, d *domain.BlockedDate) error
	Delete(ctx context.Context, id string) error
	IsBlocked(ctx context.Context, date string) (bool, error)
	List(ctx context.Context) ([]domain.BlockedDate, error)
}

// DateBlocker 时段账本对封禁日期的依赖
type DateBlocker interface {
	IsBlocked(ctx context.Context, date string) (bool, error)
}
