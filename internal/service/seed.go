package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"appointly/internal/domain"
	"appointly/internal/service/ports"
	"appointly/pkg/utils"
)

// Seeder 本地演示数据：两个账号 + 未来 5 天每天 9-17 点（跳过 12 点）的时段
type Seeder struct {
	users ports.UserRepo
	slots ports.SlotRepo
	log   *zap.Logger
	now   func() time.Time
}

func NewSeeder(users ports.UserRepo, slots ports.SlotRepo, log *zap.Logger) *Seeder {
	return &Seeder{users: users, slots: slots, log: log, now: time.Now}
}

type seedUser struct {
	username, password, email, name string
	role                            domain.Role
}

var seedUsers = []seedUser{
	{"admin", "admin123", "admin@example.com", "Business Owner", domain.RoleAdmin},
	{"customer", "customer123", "customer@example.com", "John Doe", domain.RoleCustomer},
}

func (s *Seeder) Seed(ctx context.Context) error {
	for _, su := range seedUsers {
		_, err := s.users.GetByUsername(ctx, su.username)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		hash, err := utils.HashPassword(su.password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u := &domain.User{
			ID:           utils.NewID(),
			Username:     su.username,
			Email:        su.email,
			PasswordHash: hash,
			Role:         su.role,
			Name:         su.name,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		s.log.Info("seed user created", zap.String("username", su.username), zap.String("role", string(su.role)))
	}

	n, err := s.slots.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	today := s.now()
	created := 0
	for d := 0; d < 5; d++ {
		date := today.AddDate(0, 0, d).Format(domain.DateLayout)
		for h := 9; h < 17; h++ {
			if h == 12 {
				continue
			}
			slot := &domain.TimeSlot{
				ID:        utils.NewID(),
				Date:      date,
				StartTime: fmt.Sprintf("%02d:00", h),
				EndTime:   fmt.Sprintf("%02d:00", h+1),
				Capacity:  3,
			}
			if err := s.slots.Create(ctx, slot); err != nil {
				return err
			}
			created++
		}
	}
	s.log.Info("seed slots created", zap.Int("count", created))
	return nil
}
