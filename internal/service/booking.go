package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"appointly/internal/authz"
	"appointly/internal/core/metrics"
	"appointly/internal/domain"
	"appointly/internal/service/ports"
)

type BookingService struct {
	tx       ports.Transactor
	bookings ports.BookingRepo
	slots    ports.SlotLedger
	notifier ports.Notifier
	log      *zap.Logger
}

func NewBookingService(
	tx ports.Transactor,
	bookings ports.BookingRepo,
	slots ports.SlotLedger,
	notifier ports.Notifier,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:       tx,
		bookings: bookings,
		slots:    slots,
		notifier: notifier,
		log:      log,
	}
}

// Create 新预约为 pending，等待管理员确认。
// 名额占用与插入在同一事务里：先条件自增（锁住时段行），再查重，再写入。
func (s *BookingService) Create(ctx context.Context, actor domain.Actor, slotID string) (*domain.Booking, error) {
	if err := authz.Authorize(actor, authz.BookingCreate, authz.Resource{}).Err(); err != nil {
		return nil, err
	}
	if slotID == "" {
		return nil, domain.Validation("slotId", "slotId is required")
	}

	booking := &domain.Booking{
		ID:     uuid.NewString(),
		UserID: actor.ID,
		SlotID: slotID,
		Status: domain.BookingPending,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.slots.AdjustBookedCount(ctx, slotID, 1); err != nil {
			return err
		}
		dup, err := s.bookings.HasActive(ctx, actor.ID, slotID)
		if err != nil {
			return err
		}
		if dup {
			return domain.Conflict("you already have a booking for this slot")
		}
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		metrics.BookingsRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}
	metrics.BookingsCreated.Inc()

	s.log.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("slot_id", slotID),
		zap.String("user_id", actor.ID),
	)

	full := s.reload(ctx, booking)
	s.notifier.NotifyAdminNewBooking(context.WithoutCancel(ctx), full)
	return full, nil
}

func (s *BookingService) Confirm(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	if err := authz.Authorize(actor, authz.BookingConfirm, authz.Resource{}).Err(); err != nil {
		return nil, err
	}
	ok, err := s.bookings.UpdateStatus(ctx, id, domain.BookingConfirmed, domain.BookingPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 区分不存在与状态不符
		b, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, domain.Conflict("booking is already " + string(b.Status))
	}
	metrics.BookingTransitions.WithLabelValues(string(domain.BookingConfirmed)).Inc()

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking confirmed", zap.String("booking_id", id), zap.String("by", actor.ID))
	s.notifier.NotifyUserConfirmed(context.WithoutCancel(ctx), b)
	return b, nil
}

// Cancel 状态变更与释放名额同一事务
func (s *BookingService) Cancel(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	// 匿名请求不查库，不暴露预约是否存在
	if !actor.Authenticated() {
		return nil, authz.Authorize(actor, authz.BookingCancel, authz.Resource{}).Err()
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.BookingCancel, authz.Resource{OwnerID: b.UserID}).Err(); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.bookings.UpdateStatus(ctx, id, domain.BookingCancelled, domain.ActiveStatuses...)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Conflict("booking is already cancelled")
		}
		return s.slots.AdjustBookedCount(ctx, b.SlotID, -1)
	})
	if err != nil {
		return nil, err
	}
	metrics.BookingTransitions.WithLabelValues(string(domain.BookingCancelled)).Inc()

	s.log.Info("booking cancelled", zap.String("booking_id", id), zap.String("by", actor.ID))
	full := s.reload(ctx, b)
	full.Status = domain.BookingCancelled
	s.notifier.NotifyUserCancelled(context.WithoutCancel(ctx), full)
	return full, nil
}

// List 非管理员只能看自己的
func (s *BookingService) List(ctx context.Context, actor domain.Actor, f domain.BookingFilter) ([]domain.Booking, error) {
	if err := authz.Authorize(actor, authz.BookingList, authz.Resource{OwnerID: f.UserID}).Err(); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		f.UserID = actor.ID
	}
	out, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Booking{}
	}
	return out, nil
}

func (s *BookingService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	if !actor.Authenticated() {
		return nil, authz.Authorize(actor, authz.BookingGet, authz.Resource{}).Err()
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.BookingGet, authz.Resource{OwnerID: b.UserID}).Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// reload 取带 User/Slot 的完整记录；失败时退回原对象，不影响已提交的结果
func (s *BookingService) reload(ctx context.Context, b *domain.Booking) *domain.Booking {
	full, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		s.log.Warn("reload booking failed", zap.String("booking_id", b.ID), zap.Error(err))
		return b
	}
	return full
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, domain.ErrConflict):
		return "duplicate"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
