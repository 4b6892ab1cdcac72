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

// ErrPeriodHasScholarships is returned when trying to delete a period with awarded records.
var ErrPeriodHasScholarships = errors.New("period has scholarship records and cannot be deleted")

// PeriodRepository handles academic period database operations.
type PeriodRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPeriodRepository creates a new PeriodRepository
func NewPeriodRepository(db *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create creates a new period.
func (r *PeriodRepository) Create(ctx context.Context, period *models.Period) (int64, error) {
	sql, args, err := r.sb.Insert("periods").
		Columns("name", "year", "term", "active").
		Values(period.Name, period.Year, period.Term, period.Active).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create period query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, apperrors.ErrPeriodAlreadyExists
		}
		return 0, fmt.Errorf("error creating period: %w", err)
	}
	return id, nil
}

// GetByID retrieves a period by ID.
func (r *PeriodRepository) GetByID(ctx context.Context, id int64) (*models.Period, error) {
	sql, args, err := r.sb.Select("id", "name", "year", "term", "active", "created_at", "updated_at").
		From("periods").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get period query: %w", err)
	}

	p := &models.Period{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.Name, &p.Year, &p.Term, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPeriodNotFound
		}
		return nil, fmt.Errorf("error getting period by ID: %w", err)
	}
	return p, nil
}

// GetAll retrieves all periods, newest first.
func (r *PeriodRepository) GetAll(ctx context.Context) ([]*models.Period, error) {
	sql, args, err := r.sb.Select("id", "name", "year", "term", "active", "created_at", "updated_at").
		From("periods").
		OrderBy("year DESC", "term DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all periods query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying periods: %w", err)
	}
	defer rows.Close()

	periods := []*models.Period{}
	for rows.Next() {
		p := &models.Period{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Year, &p.Term, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning period row: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", err)
	}
	return periods, nil
}

// Update updates an existing period.
func (r *PeriodRepository) Update(ctx context.Context, period *models.Period) error {
	sql, args, err := r.sb.Update("periods").
		SetMap(map[string]interface{}{
			"name":   period.Name,
			"year":   period.Year,
			"term":   period.Term,
			"active": period.Active,
		}).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": period.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update period query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return apperrors.ErrPeriodAlreadyExists
		}
		return fmt.Errorf("error updating period: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPeriodNotFound
	}
	return nil
}

// Delete deletes a period by ID. Periods that already awarded scholarships
// cannot be removed.
func (r *PeriodRepository) Delete(ctx context.Context, id int64) error {
	var hasScholarships bool
	checkSql, checkArgs, err := r.sb.Select("1").
		From("scholarships").
		Where(squirrel.Eq{"period_id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build check scholarships query: %w", err)
	}

	err = r.db.QueryRow(ctx, checkSql, checkArgs...).Scan(&hasScholarships)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("error checking associated scholarships: %w", err)
	}
	if hasScholarships {
		return ErrPeriodHasScholarships
	}

	sql, args, err := r.sb.Delete("periods").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete period query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting period: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPeriodNotFound
	}
	return nil
}
