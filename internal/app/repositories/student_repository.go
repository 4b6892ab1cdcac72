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

// StudentRepository handles imported student database operations.
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const studentColumns = "id, national_id, first_name, last_name, university_email, faculty, career, semester, average_grade, academic_condition, created_at, updated_at"

// Upsert inserts or refreshes a student row keyed by national ID and returns
// its ID. Each import run replaces the academic snapshot wholesale.
func (r *StudentRepository) Upsert(ctx context.Context, rec models.StudentRecord) (int64, error) {
	query := `
		INSERT INTO students (national_id, first_name, last_name, university_email, faculty, career, semester, average_grade, academic_condition)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (national_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			university_email = EXCLUDED.university_email,
			faculty = EXCLUDED.faculty,
			career = EXCLUDED.career,
			semester = EXCLUDED.semester,
			average_grade = EXCLUDED.average_grade,
			academic_condition = EXCLUDED.academic_condition,
			updated_at = NOW()
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		rec.NationalID, rec.FirstName, rec.LastName, rec.UniversityEmail,
		rec.Faculty, rec.Career, rec.Semester, rec.AverageGrade, rec.AcademicCondition,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error upserting student: %w", err)
	}
	return id, nil
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	return r.scanOne(ctx, sql, args)
}

// GetByNationalID retrieves a student by national ID.
func (r *StudentRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students").
		Where(squirrel.Eq{"national_id": nationalID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	return r.scanOne(ctx, sql, args)
}

// GetByUniversityEmail retrieves a student by institutional email. Applicant
// registration uses it to link accounts to imported roster rows.
func (r *StudentRepository) GetByUniversityEmail(ctx context.Context, email string) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students").
		Where(squirrel.Eq{"university_email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	return r.scanOne(ctx, sql, args)
}

func (r *StudentRepository) scanOne(ctx context.Context, sql string, args []interface{}) (*models.Student, error) {
	s := &models.Student{}
	err := r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.NationalID, &s.FirstName, &s.LastName, &s.UniversityEmail,
		&s.Faculty, &s.Career, &s.Semester, &s.AverageGrade, &s.AcademicCondition,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error scanning student row: %w", err)
	}
	return s, nil
}
