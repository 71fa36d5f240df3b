package ports

import (
	"context"

	"appointly/internal/domain"
)

type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) error
	// GetByID 预加载 User 与 Slot
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	HasActive(ctx context.Context, userID, slotID string) (bool, error)
	// UpdateStatus 仅当当前状态属于 from 时更新，返回是否命中
	UpdateStatus(ctx context.Context, id string, to domain.BookingStatus, from ...domain.BookingStatus) (bool, error)
}

// Notifier 通知投递；实现必须立即返回，失败不影响业务
type Notifier interface {
	NotifyAdminNewBooking(ctx context.Context, b *domain.Booking)
	NotifyUserConfirmed(ctx context.Context, b *domain.Booking)
	NotifyUserCancelled(ctx context.Context, b *domain.Booking)
	NotifyWelcome(ctx context.Context, u *domain.User)
}
