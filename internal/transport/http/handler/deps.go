package handler

import (
	"context"
	"io"

	"appointly/internal/domain"
	"appointly/internal/service"
)

type SlotService interface {
	Create(ctx context.Context, actor domain.Actor, in service.CreateSlotInput) (*domain.TimeSlot, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	List(ctx context.Context, f domain.SlotFilter) ([]domain.TimeSlot, error)
}

type BookingService interface {
	Create(ctx context.Context, actor domain.Actor, slotID string) (*domain.Booking, error)
	Confirm(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error)
	List(ctx context.Context, actor domain.Actor, f domain.BookingFilter) ([]domain.Booking, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error)
}

type BlockedDateService interface {
	Block(ctx context.Context, actor domain.Actor, date, reason string) (*domain.BlockedDate, error)
	Unblock(ctx context.Context, actor domain.Actor, id string) error
	List(ctx context.Context) ([]domain.BlockedDate, error)
}

type AccountService interface {
	SendOTP(ctx context.Context, email string) error
	Register(ctx context.Context, in service.RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	Me(ctx context.Context, actor domain.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, p service.ProfilePatch) (*domain.User, error)
	UploadAvatar(ctx context.Context, actor domain.Actor, filename string, r io.Reader) (string, error)
	ListUsers(ctx context.Context, actor domain.Actor, q string, offset, limit int) ([]domain.User, int64, error)
}
