package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmorales/becas-core/internal/app/models"
)

// EvidenceRepository handles document evidence database operations.
type EvidenceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEvidenceRepository creates a new EvidenceRepository
func NewEvidenceRepository(db *pgxpool.Pool) *EvidenceRepository {
	return &EvidenceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Add attaches a new evidence version to a scholarship record. The version
// number is derived in the database so concurrent uploads cannot collide.
func (r *EvidenceRepository) Add(ctx context.Context, ev *models.DocumentEvidence) (int64, error) {
	query := `
		INSERT INTO document_evidence (scholarship_id, document_type, version, file_id, uploaded_by)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(version), 0) + 1
			 FROM document_evidence
			 WHERE scholarship_id = $1 AND document_type = $2),
			$3, $4)
		RETURNING id, version`

	err := r.db.QueryRow(ctx, query, ev.ScholarshipID, ev.DocumentType, ev.FileID, ev.UploadedBy).
		Scan(&ev.ID, &ev.Version)
	if err != nil {
		return 0, fmt.Errorf("error adding evidence: %w", err)
	}
	return ev.ID, nil
}

// HasEvidence reports whether any evidence of the given type is attached.
func (r *EvidenceRepository) HasEvidence(ctx context.Context, scholarshipID int64, docType models.DocumentType) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("document_evidence").
		Where(squirrel.Eq{"scholarship_id": scholarshipID, "document_type": docType}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build evidence exists query: %w", err)
	}

	var exists bool
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("error checking evidence existence: %w", err)
	}
	return exists, nil
}

// HasEvidenceSince reports whether evidence of the given type was attached at
// or after the given instant. Resubmission guards use it: only evidence
// uploaded after the record entered a rejected state counts as a new version.
func (r *EvidenceRepository) HasEvidenceSince(ctx context.Context, scholarshipID int64, docType models.DocumentType, since time.Time) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("document_evidence").
		Where(squirrel.Eq{"scholarship_id": scholarshipID, "document_type": docType}).
		Where(squirrel.GtOrEq{"created_at": since}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build evidence since query: %w", err)
	}

	var exists bool
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("error checking evidence since: %w", err)
	}
	return exists, nil
}

// ListByScholarship returns all evidence attached to a record, newest first.
func (r *EvidenceRepository) ListByScholarship(ctx context.Context, scholarshipID int64) ([]*models.DocumentEvidence, error) {
	sql, args, err := r.sb.Select("id", "scholarship_id", "document_type", "version", "file_id", "uploaded_by", "created_at").
		From("document_evidence").
		Where(squirrel.Eq{"scholarship_id": scholarshipID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list evidence query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying evidence: %w", err)
	}
	defer rows.Close()

	evidence := []*models.DocumentEvidence{}
	for rows.Next() {
		ev := &models.DocumentEvidence{}
		if err := rows.Scan(&ev.ID, &ev.ScholarshipID, &ev.DocumentType, &ev.Version, &ev.FileID, &ev.UploadedBy, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning evidence row: %w", err)
		}
		evidence = append(evidence, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evidence rows: %w", err)
	}
	return evidence, nil
}
