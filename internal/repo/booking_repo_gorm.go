package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"appointly/internal/domain"
)

type BookingRepo struct{ db *gorm.DB }

func NewBookingRepo(db *gorm.DB) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if err := conn(ctx, r.db).Omit("User", "Slot").Create(b).Error; err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := conn(ctx, r.db).Preload("User").Preload("Slot").First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("booking")
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	tx := conn(ctx, r.db).Preload("User").Preload("Slot")
	if f.UserID != "" {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	var out []domain.Booking
	if err := tx.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

func (r *BookingRepo) HasActive(ctx context.Context, userID, slotID string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Booking{}).
		Where("user_id = ? AND slot_id = ? AND status IN ?", userID, slotID, domain.ActiveStatuses).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check active booking: %w", err)
	}
	return n > 0, nil
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, to domain.BookingStatus, from ...domain.BookingStatus) (bool, error) {
	tx := conn(ctx, r.db).Model(&domain.Booking{}).Where("id = ?", id)
	if len(from) > 0 {
		tx = tx.Where("status IN ?", from)
	}
	res := tx.Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("update booking status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
