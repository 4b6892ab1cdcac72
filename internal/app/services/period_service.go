package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/app/models/dto"
	"github.com/dmorales/becas-core/internal/app/repositories"
)

// PeriodService defines the interface for academic period operations
type PeriodService interface {
	CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest) (*models.Period, error)
	GetAllPeriods(ctx context.Context) ([]*models.Period, error)
	GetPeriodByID(ctx context.Context, id int64) (*models.Period, error)
	UpdatePeriod(ctx context.Context, id int64, req dto.UpdatePeriodRequest) (*models.Period, error)
	DeletePeriod(ctx context.Context, id int64) error
}

// periodServiceImpl implements PeriodService
type periodServiceImpl struct {
	periodRepo *repositories.PeriodRepository
	logger     zerolog.Logger
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(periodRepo *repositories.PeriodRepository, logger zerolog.Logger) PeriodService {
	return &periodServiceImpl{periodRepo: periodRepo, logger: logger}
}

// CreatePeriod creates a new academic period.
func (s *periodServiceImpl) CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest) (*models.Period, error) {
	period := &models.Period{
		Name:   req.Name,
		Year:   req.Year,
		Term:   req.Term,
		Active: req.Active,
	}

	id, err := s.periodRepo.Create(ctx, period)
	if err != nil {
		return nil, err
	}
	period.ID = id

	s.logger.Info().Int64("periodId", id).Str("name", period.Name).Msg("Period created")
	return s.periodRepo.GetByID(ctx, id)
}

// GetAllPeriods retrieves all periods.
func (s *periodServiceImpl) GetAllPeriods(ctx context.Context) ([]*models.Period, error) {
	return s.periodRepo.GetAll(ctx)
}

// GetPeriodByID retrieves a period by ID.
func (s *periodServiceImpl) GetPeriodByID(ctx context.Context, id int64) (*models.Period, error) {
	return s.periodRepo.GetByID(ctx, id)
}

// UpdatePeriod updates an existing period.
func (s *periodServiceImpl) UpdatePeriod(ctx context.Context, id int64, req dto.UpdatePeriodRequest) (*models.Period, error) {
	period, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	period.Name = req.Name
	period.Year = req.Year
	period.Term = req.Term
	period.Active = req.Active

	if err := s.periodRepo.Update(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to update period %d: %w", id, err)
	}
	return s.periodRepo.GetByID(ctx, id)
}

// DeletePeriod deletes a period. Periods with awarded records are protected
// at the repository level.
func (s *periodServiceImpl) DeletePeriod(ctx context.Context, id int64) error {
	if err := s.periodRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("periodId", id).Msg("Period deleted")
	return nil
}
