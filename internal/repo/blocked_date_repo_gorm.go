package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"appointly/internal/domain"
)

type BlockedDateRepo struct{ db *gorm.DB }

func NewBlockedDateRepo(db *gorm.DB) *BlockedDateRepo { return &BlockedDateRepo{db: db} }

func (r *BlockedDateRepo) Create(ctx context.Context, d *domain.BlockedDate) error {
	if err := conn(ctx, r.db).Create(d).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("date is already blocked")
		}
		return fmt.Errorf("block date: %w", err)
	}
	return nil
}

func (r *BlockedDateRepo) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&domain.BlockedDate{})
	if res.Error != nil {
		return fmt.Errorf("unblock date: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("blocked date")
	}
	return nil
}

func (r *BlockedDateRepo) IsBlocked(ctx context.Context, date string) (bool, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&domain.BlockedDate{}).Where("date = ?", date).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check blocked date: %w", err)
	}
	return n > 0, nil
}

func (r *BlockedDateRepo) List(ctx context.Context) ([]domain.BlockedDate, error) {
	out := []domain.BlockedDate{}
	if err := conn(ctx, r.db).Order("date ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list blocked dates: %w", err)
	}
	return out, nil
}
