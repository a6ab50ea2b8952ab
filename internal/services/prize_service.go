package services

import (
	"context"
	"errors"
	"strings"

	"github.com/stamprally/backend/internal/models"
	repo "github.com/stamprally/backend/internal/repository"
	"github.com/stamprally/backend/internal/worker"
)

type PrizeService struct {
	prizes repo.Prizes
	audits repo.AuditLogs
	wp     *worker.Pool
}

func NewPrizeService(prizes repo.Prizes, audits repo.AuditLogs, wp *worker.Pool) *PrizeService {
	return &PrizeService{prizes: prizes, audits: audits, wp: wp}
}

func (s *PrizeService) Create(ctx context.Context, p models.Prize) (models.Prize, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Prize{}, errors.New("prize name required")
	}
	if p.PointsRequired <= 0 {
		return models.Prize{}, errors.New("points required must be > 0")
	}
	if p.Stock < 0 {
		return models.Prize{}, errors.New("stock must be >= 0")
	}
	p.Active = true
	created, err := s.prizes.Create(ctx, p)
	if err != nil {
		return models.Prize{}, err
	}
	s.audit(created.ID, "created", map[string]any{"name": created.Name, "points_required": created.PointsRequired})
	return created, nil
}

// UpdatePrizeParams carries a partial update; nil fields keep their
// current value.
type UpdatePrizeParams struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	PointsRequired *int64  `json:"points_required"`
	Stock          *int64  `json:"stock"`
	ImageURL       *string `json:"image_url"`
	Active         *bool   `json:"active"`
}

func (s *PrizeService) Update(ctx context.Context, id string, params UpdatePrizeParams) (models.Prize, error) {
	p, err := s.prizes.GetByID(ctx, id)
	if err != nil {
		return models.Prize{}, err
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.PointsRequired != nil {
		p.PointsRequired = *params.PointsRequired
	}
	if params.Stock != nil {
		p.Stock = *params.Stock
	}
	if params.ImageURL != nil {
		p.ImageURL = *params.ImageURL
	}
	if params.Active != nil {
		p.Active = *params.Active
	}
	if p.PointsRequired <= 0 {
		return models.Prize{}, errors.New("points required must be > 0")
	}
	if p.Stock < 0 {
		return models.Prize{}, errors.New("stock must be >= 0")
	}
	updated, err := s.prizes.Update(ctx, p)
	if err != nil {
		return models.Prize{}, err
	}
	s.audit(id, "updated", nil)
	return updated, nil
}

func (s *PrizeService) Deactivate(ctx context.Context, id string) error {
	if err := s.prizes.Deactivate(ctx, id); err != nil {
		return err
	}
	s.audit(id, "deactivated", nil)
	return nil
}

func (s *PrizeService) ListActive(ctx context.Context) ([]models.Prize, error) {
	return s.prizes.ListActive(ctx)
}

func (s *PrizeService) ListAll(ctx context.Context) ([]models.Prize, error) {
	return s.prizes.ListAll(ctx)
}

func (s *PrizeService) audit(entityID, action string, details map[string]any) {
	id := entityID
	s.wp.Submit(func() {
		_ = s.audits.Create(context.Background(), models.AuditLog{
			EntityType: "prize",
			EntityID:   &id,
			Action:     action,
			Details:    details,
		})
	})
}
