package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"appointly/internal/domain"
)

// OTPRepo 未配置 Redis 时的验证码存储
type OTPRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOTPRepo(db *gorm.DB) *OTPRepo { return &OTPRepo{db: db, now: time.Now} }

func (r *OTPRepo) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	now := r.now()
	db := conn(ctx, r.db)
	// 顺手清理过期记录
	if err := db.Where("expires_at <= ?", now).Delete(&domain.OTP{}).Error; err != nil {
		return fmt.Errorf("purge otps: %w", err)
	}
	otp := domain.OTP{Email: email, Code: code, ExpiresAt: now.Add(ttl)}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at"}),
	}).Create(&otp).Error
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (r *OTPRepo) Verify(ctx context.Context, email, code string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.OTP{}).
		Where("email = ? AND code = ? AND expires_at > ?", email, code, r.now()).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("verify otp: %w", err)
	}
	return n > 0, nil
}

func (r *OTPRepo) Delete(ctx context.Context, email string) error {
	if err := conn(ctx, r.db).Where("email = ?", email).Delete(&domain.OTP{}).Error; err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
