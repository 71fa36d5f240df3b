// Package mocks 基于 testify/mock 的端口桩实现。
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"appointly/internal/domain"
)

// Transactor 直接在同一 ctx 上执行 fn
type Transactor struct{}

func (Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type SlotRepo struct{ mock.Mock }

func (m *SlotRepo) Create(ctx context.Context, s *domain.TimeSlot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SlotRepo) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.TimeSlot)
	return s, args.Error(1)
}

func (m *SlotRepo) List(ctx context.Context, f domain.SlotFilter) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, f)
	s, _ := args.Get(0).([]domain.TimeSlot)
	return s, args.Error(1)
}

func (m *SlotRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SlotRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SlotRepo) AdjustBookedCount(ctx context.Context, id string, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

type BlockedDateRepo struct{ mock.Mock }

func (m *BlockedDateRepo) Create(ctx context.Context, d *domain.BlockedDate) error {
	return m.Called(ctx, d).Error(0)
}

func (m *BlockedDateRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *BlockedDateRepo) IsBlocked(ctx context.Context, date string) (bool, error) {
	args := m.Called(ctx, date)
	return args.Bool(0), args.Error(1)
}

func (m *BlockedDateRepo) List(ctx context.Context) ([]domain.BlockedDate, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).([]domain.BlockedDate)
	return d, args.Error(1)
}

type BookingRepo struct{ mock.Mock }

func (m *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *BookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, f)
	b, _ := args.Get(0).([]domain.Booking)
	return b, args.Error(1)
}

func (m *BookingRepo) HasActive(ctx context.Context, userID, slotID string) (bool, error) {
	args := m.Called(ctx, userID, slotID)
	return args.Bool(0), args.Error(1)
}

func (m *BookingRepo) UpdateStatus(ctx context.Context, id string, to domain.BookingStatus, from ...domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, to, from)
	return args.Bool(0), args.Error(1)
}

type SlotLedger struct{ mock.Mock }

func (m *SlotLedger) AdjustBookedCount(ctx context.Context, slotID string, delta int) error {
	return m.Called(ctx, slotID, delta).Error(0)
}

type Notifier struct{ mock.Mock }

func (m *Notifier) NotifyAdminNewBooking(ctx context.Context, b *domain.Booking) { m.Called(ctx, b) }
func (m *Notifier) NotifyUserConfirmed(ctx context.Context, b *domain.Booking)   { m.Called(ctx, b) }
func (m *Notifier) NotifyUserCancelled(ctx context.Context, b *domain.Booking)   { m.Called(ctx, b) }
func (m *Notifier) NotifyWelcome(ctx context.Context, u *domain.User)            { m.Called(ctx, u) }

type UserRepo struct{ mock.Mock }

func (m *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepo) user(args mock.Arguments) (*domain.User, error) {
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *UserRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	args := m.Called(ctx, q, offset, limit)
	u, _ := args.Get(0).([]domain.User)
	return u, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type OTPStore struct{ mock.Mock }

func (m *OTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	return m.Called(ctx, email, code, ttl).Error(0)
}

func (m *OTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

func (m *OTPStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type Mailer struct{ mock.Mock }

func (m *Mailer) SendOTP(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

type TokenIssuer struct{ mock.Mock }

func (m *TokenIssuer) Issue(uid, role string) (string, error) {
	args := m.Called(uid, role)
	return args.String(0), args.Error(1)
}

type FileStore struct{ mock.Mock }

func (m *FileStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	args := m.Called(ctx, ext, r)
	return args.String(0), args.Error(1)
}
