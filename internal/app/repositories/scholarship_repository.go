package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
)

// ScholarshipRepository handles scholarship record database operations.
type ScholarshipRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewScholarshipRepository creates a new ScholarshipRepository
func NewScholarshipRepository(db *pgxpool.Pool) *ScholarshipRepository {
	return &ScholarshipRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ScholarshipFilter narrows List results.
type ScholarshipFilter struct {
	PeriodID  *int64
	StudentID *int64
	Status    *models.Status
	Career    *string
}

const scholarshipColumns = "id, student_id, period_id, career, average_grade, status, rejection_reason, bank_account_number, payment_date, version, created_at, updated_at"

// UpsertFromDecision inserts or refreshes the scholarship row for one
// (student, period) pair from a selection decision. Re-imports converge on
// the same row: grade and career are always refreshed, but status is only
// reset while the record has made no lifecycle progress (still SELECTED or
// EXCLUDED). A record mid-review keeps its state.
func (r *ScholarshipRepository) UpsertFromDecision(ctx context.Context, studentID, periodID int64, career string, averageGrade float64, status models.Status, rejectionReason *models.RejectionReason) (int64, error) {
	var reason *string
	if rejectionReason != nil {
		s := string(*rejectionReason)
		reason = &s
	}

	query := `
		INSERT INTO scholarships (student_id, period_id, career, average_grade, status, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, period_id) DO UPDATE SET
			career = EXCLUDED.career,
			average_grade = EXCLUDED.average_grade,
			status = CASE WHEN scholarships.status IN ('SELECTED', 'EXCLUDED')
				THEN EXCLUDED.status ELSE scholarships.status END,
			rejection_reason = CASE WHEN scholarships.status IN ('SELECTED', 'EXCLUDED')
				THEN EXCLUDED.rejection_reason ELSE scholarships.rejection_reason END,
			updated_at = NOW()
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query, studentID, periodID, career, averageGrade, status, reason).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error upserting scholarship: %w", err)
	}
	return id, nil
}

// GetByID retrieves a scholarship record by ID.
func (r *ScholarshipRepository) GetByID(ctx context.Context, id int64) (*models.Scholarship, error) {
	sql, args, err := r.sb.Select(scholarshipColumns).
		From("scholarships").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get scholarship query: %w", err)
	}

	s := &models.Scholarship{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.StudentID, &s.PeriodID, &s.Career, &s.AverageGrade, &s.Status,
		&s.RejectionReason, &s.BankAccountNumber, &s.PaymentDate, &s.Version,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrScholarshipNotFound
		}
		return nil, fmt.Errorf("error getting scholarship by ID: %w", err)
	}
	return s, nil
}

// UpdateWithVersion persists the record's mutable lifecycle fields with an
// optimistic-concurrency check. expectedVersion is the version the caller
// read before applying the transition; if another writer got there first the
// update matches no row and ErrConcurrentModification is returned.
func (r *ScholarshipRepository) UpdateWithVersion(ctx context.Context, s *models.Scholarship, expectedVersion int64) error {
	sql, args, err := r.sb.Update("scholarships").
		SetMap(map[string]interface{}{
			"status":              s.Status,
			"rejection_reason":    s.RejectionReason,
			"bank_account_number": s.BankAccountNumber,
			"payment_date":        s.PaymentDate,
		}).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update scholarship query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating scholarship: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Either the record is gone or someone else bumped the version.
		if _, getErr := r.GetByID(ctx, s.ID); getErr != nil {
			return getErr
		}
		return apperrors.ErrConcurrentModification
	}

	s.Version = expectedVersion + 1
	return nil
}

// SetBankAccount stores the applicant's bank account number, version-checked
// like every other scholarship update.
func (r *ScholarshipRepository) SetBankAccount(ctx context.Context, id int64, expectedVersion int64, account string) error {
	sql, args, err := r.sb.Update("scholarships").
		Set("bank_account_number", account).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set bank account query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error setting bank account: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperrors.ErrConcurrentModification
	}
	return nil
}

// List retrieves scholarship records matching the filter, newest first, with
// the student relation populated for display.
func (r *ScholarshipRepository) List(ctx context.Context, filter ScholarshipFilter) ([]*models.Scholarship, error) {
	builder := r.sb.Select(
		"s.id", "s.student_id", "s.period_id", "s.career", "s.average_grade",
		"s.status", "s.rejection_reason", "s.bank_account_number", "s.payment_date",
		"s.version", "s.created_at", "s.updated_at",
		"st.national_id", "st.first_name", "st.last_name", "st.university_email",
	).
		From("scholarships s").
		Join("students st ON st.id = s.student_id").
		OrderBy("s.average_grade DESC", "s.id ASC")

	if filter.PeriodID != nil {
		builder = builder.Where(squirrel.Eq{"s.period_id": *filter.PeriodID})
	}
	if filter.StudentID != nil {
		builder = builder.Where(squirrel.Eq{"s.student_id": *filter.StudentID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"s.status": *filter.Status})
	}
	if filter.Career != nil {
		builder = builder.Where(squirrel.Eq{"s.career": *filter.Career})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list scholarships query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying scholarships: %w", err)
	}
	defer rows.Close()

	scholarships := []*models.Scholarship{}
	for rows.Next() {
		s := &models.Scholarship{Student: &models.Student{}}
		if err := rows.Scan(
			&s.ID, &s.StudentID, &s.PeriodID, &s.Career, &s.AverageGrade,
			&s.Status, &s.RejectionReason, &s.BankAccountNumber, &s.PaymentDate,
			&s.Version, &s.CreatedAt, &s.UpdatedAt,
			&s.Student.NationalID, &s.Student.FirstName, &s.Student.LastName,
			&s.Student.UniversityEmail,
		); err != nil {
			return nil, fmt.Errorf("error scanning scholarship row: %w", err)
		}
		s.Student.ID = s.StudentID
		scholarships = append(scholarships, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scholarship rows: %w", err)
	}

	return scholarships, nil
}

// GetApplicantContact returns the applicant's email and display name for
// notification dispatch.
func (r *ScholarshipRepository) GetApplicantContact(ctx context.Context, scholarshipID int64) (string, string, error) {
	sql, args, err := r.sb.Select("st.university_email", "st.first_name", "st.last_name").
		From("scholarships s").
		Join("students st ON st.id = s.student_id").
		Where(squirrel.Eq{"s.id": scholarshipID}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", "", fmt.Errorf("failed to build applicant contact query: %w", err)
	}

	var email, firstName, lastName string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&email, &firstName, &lastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", apperrors.ErrScholarshipNotFound
		}
		return "", "", fmt.Errorf("error getting applicant contact: %w", err)
	}
	return email, firstName + " " + lastName, nil
}
