package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmorales/becas-core/internal/app/models"
)

// HistoryRepository handles status history database operations.
type HistoryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// AddStatusHistory appends one audit row for an applied transition.
func (r *HistoryRepository) AddStatusHistory(ctx context.Context, h *models.StatusHistory) error {
	sql, args, err := r.sb.Insert("status_history").
		Columns("scholarship_id", "from_status", "to_status", "actor_role", "actor_id", "reason", "created_at").
		Values(h.ScholarshipID, h.FromStatus, h.ToStatus, h.ActorRole, h.ActorID, h.Reason, h.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add history query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&h.ID); err != nil {
		return fmt.Errorf("error adding status history: %w", err)
	}
	return nil
}

// ListByScholarship returns a record's transitions in chronological order.
func (r *HistoryRepository) ListByScholarship(ctx context.Context, scholarshipID int64) ([]*models.StatusHistory, error) {
	sql, args, err := r.sb.Select("id", "scholarship_id", "from_status", "to_status", "actor_role", "actor_id", "reason", "created_at").
		From("status_history").
		Where(squirrel.Eq{"scholarship_id": scholarshipID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list history query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying status history: %w", err)
	}
	defer rows.Close()

	history := []*models.StatusHistory{}
	for rows.Next() {
		h := &models.StatusHistory{}
		if err := rows.Scan(&h.ID, &h.ScholarshipID, &h.FromStatus, &h.ToStatus, &h.ActorRole, &h.ActorID, &h.Reason, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return history, nil
}
