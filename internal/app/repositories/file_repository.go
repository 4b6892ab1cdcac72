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

// FileRepository handles stored file metadata.
type FileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateFile records a stored file and returns its ID.
func (r *FileRepository) CreateFile(ctx context.Context, file *models.File) (int64, error) {
	sql, args, err := r.sb.Insert("files").
		Columns("file_name", "file_path", "file_url", "file_size", "file_type", "uploaded_by").
		Values(file.FileName, file.FilePath, file.FileURL, file.FileSize, file.FileType, file.UploadedBy).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create file query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error creating file record: %w", err)
	}
	return id, nil
}

// GetByID retrieves file metadata by ID.
func (r *FileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	sql, args, err := r.sb.Select("id", "file_name", "file_path", "file_url", "file_size", "file_type", "uploaded_by", "created_at").
		From("files").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get file query: %w", err)
	}

	f := &models.File{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&f.ID, &f.FileName, &f.FilePath, &f.FileURL, &f.FileSize, &f.FileType, &f.UploadedBy, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting file by ID: %w", err)
	}
	return f, nil
}
