package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"appointly/internal/authz"
	"appointly/internal/domain"
	"appointly/internal/service/ports"
)

type SlotService struct {
	slots   ports.SlotRepo
	blocked ports.DateBlocker
	log     *zap.Logger
}

func NewSlotService(slots ports.SlotRepo, blocked ports.DateBlocker, log *zap.Logger) *SlotService {
	return &SlotService{slots: slots, blocked: blocked, log: log}
}

type CreateSlotInput struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Capacity  *int   `json:"capacity"` // 省略时为 1
}

func (in CreateSlotInput) validate() error {
	if !domain.ValidDate(in.Date) {
		return domain.Validation("date", "date must be YYYY-MM-DD")
	}
	if !domain.ValidClock(in.StartTime) {
		return domain.Validation("startTime", "startTime must be HH:mm")
	}
	if !domain.ValidClock(in.EndTime) {
		return domain.Validation("endTime", "endTime must be HH:mm")
	}
	// HH:mm 定长，字符串比较即时间先后
	if in.EndTime <= in.StartTime {
		return domain.Validation("endTime", "endTime must be after startTime")
	}
	if in.Capacity != nil && *in.Capacity < 1 {
		return domain.Validation("capacity", "capacity must be at least 1")
	}
	return nil
}

func (s *SlotService) Create(ctx context.Context, actor domain.Actor, in CreateSlotInput) (*domain.TimeSlot, error) {
	if err := authz.Authorize(actor, authz.SlotCreate, authz.Resource{}).Err(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	blocked, err := s.blocked.IsBlocked(ctx, in.Date)
	if err != nil {
		return nil, fmt.Errorf("check blocked date: %w", err)
	}
	if blocked {
		return nil, domain.Conflict("cannot create slot on a blocked date")
	}

	capacity := 1
	if in.Capacity != nil {
		capacity = *in.Capacity
	}
	slot := &domain.TimeSlot{
		ID:        uuid.NewString(),
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Capacity:  capacity,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	s.log.Info("slot created",
		zap.String("slot_id", slot.ID),
		zap.String("date", slot.Date),
		zap.String("start", slot.StartTime),
		zap.Int("capacity", slot.Capacity),
	)
	return slot, nil
}

func (s *SlotService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := authz.Authorize(actor, authz.SlotDelete, authz.Resource{}).Err(); err != nil {
		return err
	}
	if err := s.slots.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("slot deleted", zap.String("slot_id", id))
	return nil
}

func (s *SlotService) List(ctx context.Context, f domain.SlotFilter) ([]domain.TimeSlot, error) {
	for _, kv := range [][2]string{{"date", f.Date}, {"startDate", f.StartDate}, {"endDate", f.EndDate}} {
		if kv[1] != "" && !domain.ValidDate(kv[1]) {
			return nil, domain.Validation(kv[0], kv[0]+" must be YYYY-MM-DD")
		}
	}
	out, err := s.slots.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.TimeSlot{}
	}
	return out, nil
}

// AdjustBookedCount 只接受 ±1，由预约账本在事务内调用
func (s *SlotService) AdjustBookedCount(ctx context.Context, slotID string, delta int) error {
	if delta != 1 && delta != -1 {
		return domain.Validation("delta", "delta must be +1 or -1")
	}
	return s.slots.AdjustBookedCount(ctx, slotID, delta)
}
