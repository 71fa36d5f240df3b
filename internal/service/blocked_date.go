package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"appointly/internal/authz"
	"appointly/internal/domain"
	"appointly/internal/service/ports"
)

type BlockedDateService struct {
	repo ports.BlockedDateRepo
	log  *zap.Logger
}

func NewBlockedDateService(repo ports.BlockedDateRepo, log *zap.Logger) *BlockedDateService {
	return &BlockedDateService{repo: repo, log: log}
}

func (s *BlockedDateService) Block(ctx context.Context, actor domain.Actor, date, reason string) (*domain.BlockedDate, error) {
	if err := authz.Authorize(actor, authz.BlockedDateCreate, authz.Resource{}).Err(); err != nil {
		return nil, err
	}
	if !domain.ValidDate(date) {
		return nil, domain.Validation("date", "date must be YYYY-MM-DD")
	}
	blocked, err := s.repo.IsBlocked(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("check blocked date: %w", err)
	}
	if blocked {
		return nil, domain.Conflict("date is already blocked")
	}
	d := &domain.BlockedDate{ID: uuid.NewString(), Date: date, Reason: strings.TrimSpace(reason)}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.log.Info("date blocked", zap.String("date", date), zap.String("reason", d.Reason))
	return d, nil
}

func (s *BlockedDateService) Unblock(ctx context.Context, actor domain.Actor, id string) error {
	if err := authz.Authorize(actor, authz.BlockedDateDelete, authz.Resource{}).Err(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("date unblocked", zap.String("id", id))
	return nil
}

func (s *BlockedDateService) IsBlocked(ctx context.Context, date string) (bool, error) {
	return s.repo.IsBlocked(ctx, date)
}

func (s *BlockedDateService) List(ctx context.Context) ([]domain.BlockedDate, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.BlockedDate{}
	}
	return out, nil
}
