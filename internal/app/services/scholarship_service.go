package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/app/models/dto"
	"github.com/dmorales/becas-core/internal/app/repositories"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
	"github.com/dmorales/becas-core/internal/pkg/helpers"
	"github.com/dmorales/becas-core/internal/pkg/validation"
)

// ScholarshipService defines the interface for award record queries and
// applicant-side updates that do not go through the lifecycle machine.
type ScholarshipService interface {
	List(ctx context.Context, filter repositories.ScholarshipFilter, actor Actor, page, size int) (*dto.ScholarshipListResponse, error)
	GetByID(ctx context.Context, id int64, actor Actor) (*models.Scholarship, error)
	GetHistory(ctx context.Context, id int64, actor Actor) ([]dto.HistoryResponse, error)
	SetBankAccount(ctx context.Context, id int64, actor Actor, account string) error
}

// scholarshipServiceImpl implements ScholarshipService
type scholarshipServiceImpl struct {
	scholarshipRepo *repositories.ScholarshipRepository
	historyRepo     *repositories.HistoryRepository
	logger          zerolog.Logger
}

// NewScholarshipService creates a new ScholarshipService
func NewScholarshipService(
	scholarshipRepo *repositories.ScholarshipRepository,
	historyRepo *repositories.HistoryRepository,
	logger zerolog.Logger,
) ScholarshipService {
	return &scholarshipServiceImpl{
		scholarshipRepo: scholarshipRepo,
		historyRepo:     historyRepo,
		logger:          logger,
	}
}

// List returns a page of award records. Applicants are always scoped to
// their own records regardless of the requested filter.
func (s *scholarshipServiceImpl) List(ctx context.Context, filter repositories.ScholarshipFilter, actor Actor, page, size int) (*dto.ScholarshipListResponse, error) {
	if actor.Role == models.RoleApplicant {
		if actor.StudentID == nil {
			return nil, apperrors.ErrPermissionDenied
		}
		filter.StudentID = actor.StudentID
	}

	records, err := s.scholarshipRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	start, end := helpers.CalculateSliceIndices(page, size, len(records))
	items := make([]dto.ScholarshipResponse, 0, end-start)
	for _, rec := range records[start:end] {
		items = append(items, dto.NewScholarshipResponse(rec))
	}

	return &dto.ScholarshipListResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(int64(len(records)), page, size),
	}, nil
}

// GetByID retrieves one award record, enforcing applicant ownership.
func (s *scholarshipServiceImpl) GetByID(ctx context.Context, id int64, actor Actor) (*models.Scholarship, error) {
	rec, err := s.scholarshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.ownsRecord(rec) {
		return nil, apperrors.ErrPermissionDenied
	}
	return rec, nil
}

// GetHistory returns the record's audit trail in chronological order.
func (s *scholarshipServiceImpl) GetHistory(ctx context.Context, id int64, actor Actor) ([]dto.HistoryResponse, error) {
	if _, err := s.GetByID(ctx, id, actor); err != nil {
		return nil, err
	}

	rows, err := s.historyRepo.ListByScholarship(ctx, id)
	if err != nil {
		return nil, err
	}

	history := make([]dto.HistoryResponse, 0, len(rows))
	for _, h := range rows {
		history = append(history, dto.HistoryResponse{
			FromStatus: h.FromStatus,
			ToStatus:   h.ToStatus,
			ActorRole:  h.ActorRole,
			Reason:     h.Reason,
			Timestamp:  h.CreatedAt,
		})
	}
	return history, nil
}

// SetBankAccount stores the applicant's payment account on their own record.
// The account must be set before documents can be approved for payment; a
// terminal record no longer accepts it.
func (s *scholarshipServiceImpl) SetBankAccount(ctx context.Context, id int64, actor Actor, account string) error {
	if !validation.IsValidBankAccount(account) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed,
			"bank account must be a 22 digit number")
	}

	rec, err := s.scholarshipRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.ownsRecord(rec) {
		return apperrors.ErrPermissionDenied
	}
	if rec.Status.IsTerminal() {
		return apperrors.NewConflictError("record is closed and no longer accepts a bank account")
	}

	if err := s.scholarshipRepo.SetBankAccount(ctx, id, rec.Version, account); err != nil {
		return err
	}

	s.logger.Info().Int64("recordId", id).Msg("Bank account recorded")
	return nil
}
