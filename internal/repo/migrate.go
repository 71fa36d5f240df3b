package repo

import (
	"gorm.io/gorm"

	"appointly/internal/domain"
)

// Migrate 建表但不建外键：删除时段（已约数为 0）时，已取消的预约作为历史保留
func Migrate(db *gorm.DB) error {
	m := db.Session(&gorm.Session{})
	m.Config.DisableForeignKeyConstraintWhenMigrating = true
	return m.AutoMigrate(
		&domain.User{},
		&domain.TimeSlot{},
		&domain.Booking{},
		&domain.BlockedDate{},
		&domain.OTP{},
	)
}
