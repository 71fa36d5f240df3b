package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"appointly/internal/domain"
)

type SlotRepo struct{ db *gorm.DB }

func NewSlotRepo(db *gorm.DB) *SlotRepo { return &SlotRepo{db: db} }

func (r *SlotRepo) Create(ctx context.Context, s *domain.TimeSlot) error {
	if err := conn(ctx, r.db).Create(s).Error; err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

func (r *SlotRepo) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	err := conn(ctx, r.db).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("slot")
	}
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &s, nil
}

func (r *SlotRepo) exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&domain.TimeSlot{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return n > 0, nil
}

func (r *SlotRepo) List(ctx context.Context, f domain.SlotFilter) ([]domain.TimeSlot, error) {
	tx := conn(ctx, r.db).Model(&domain.TimeSlot{})
	switch {
	case f.Date != "":
		tx = tx.Where("date = ?", f.Date)
	default:
		if f.StartDate != "" {
			tx = tx.Where("date >= ?", f.StartDate)
		}
		if f.EndDate != "" {
			tx = tx.Where("date <= ?", f.EndDate)
		}
	}
	var out []domain.TimeSlot
	if err := tx.Order("date ASC").Order("start_time ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return out, nil
}

func (r *SlotRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&domain.TimeSlot{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count slots: %w", err)
	}
	return n, nil
}

func (r *SlotRepo) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Where("id = ? AND booked_count = 0", id).Delete(&domain.TimeSlot{})
	if res.Error != nil {
		return fmt.Errorf("delete slot: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	ok, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("slot")
	}
	return domain.Conflict("slot has active bookings")
}

// AdjustBookedCount 单条条件 UPDATE 完成检查与增减，并发下不会超卖
func (r *SlotRepo) AdjustBookedCount(ctx context.Context, id string, delta int) error {
	res := conn(ctx, r.db).Model(&domain.TimeSlot{}).
		Where("id = ? AND booked_count + ? >= 0 AND booked_count + ? <= capacity", id, delta, delta).
		UpdateColumn("booked_count", gorm.Expr("booked_count + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("adjust booked count: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	ok, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("slot")
	}
	if delta > 0 {
		return domain.CapacityExceeded("slot is fully booked")
	}
	return domain.Conflict("slot has no bookings to release")
}
