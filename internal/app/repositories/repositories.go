package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is the shared not-found sentinel for all repositories.
var ErrNotFound = errors.New("resource not found")

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation error.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // 23505 is unique_violation
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	PeriodRepository      *PeriodRepository
	StudentRepository     *StudentRepository
	ScholarshipRepository *ScholarshipRepository
	EvidenceRepository    *EvidenceRepository
	HistoryRepository     *HistoryRepository
	FileRepository        *FileRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		PeriodRepository:      NewPeriodRepository(db),
		StudentRepository:     NewStudentRepository(db),
		ScholarshipRepository: NewScholarshipRepository(db),
		EvidenceRepository:    NewEvidenceRepository(db),
		HistoryRepository:     NewHistoryRepository(db),
		FileRepository:        NewFileRepository(db),
	}
}
