package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"appointly/internal/domain"
	"appointly/internal/repo"
	"appointly/internal/repo/sqlitetest"
)

type fixture struct {
	db       *gorm.DB
	tx       *repo.Transactor
	users    *repo.UserRepo
	slots    *repo.SlotRepo
	bookings *repo.BookingRepo
	blocked  *repo.BlockedDateRepo
	otps     *repo.OTPRepo
}

func newFixture(t *testing.T) *fixture {
	return fixtureOn(sqlitetest.Open(t))
}

func fixtureOn(db *gorm.DB) *fixture {
	return &fixture{
		db:       db,
		tx:       repo.NewTransactor(db),
		users:    repo.NewUserRepo(db),
		slots:    repo.NewSlotRepo(db),
		bookings: repo.NewBookingRepo(db),
		blocked:  repo.NewBlockedDateRepo(db),
		otps:     repo.NewOTPRepo(db),
	}
}

func (f *fixture) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleCustomer,
		Name:         username,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) slot(t *testing.T, date, start string, capacity int) *domain.TimeSlot {
	t.Helper()
	s := &domain.TimeSlot{ID: uuid.NewString(), Date: date, StartTime: start, EndTime: "23:59", Capacity: capacity}
	require.NoError(t, f.slots.Create(context.Background(), s))
	return s
}

func (f *fixture) booking(t *testing.T, u *domain.User, s *domain.TimeSlot, st domain.BookingStatus, at time.Time) *domain.Booking {
	t.Helper()
	b := &domain.Booking{ID: uuid.NewString(), UserID: u.ID, SlotID: s.ID, Status: st, CreatedAt: at}
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}
