package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/app/repositories"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
	"github.com/dmorales/becas-core/internal/pkg/filestorage"
)

// maxEvidenceSize caps uploaded evidence at 10 MB.
const maxEvidenceSize = 10 << 20

// applicantDocTypes are the document types applicants may upload themselves.
// Generated artifacts (unsigned contracts, receipts) only enter through
// SaveArtifact.
var applicantDocTypes = map[models.DocumentType]bool{
	models.DocumentBankCert:       true,
	models.DocumentContractSigned: true,
}

// EvidenceService defines the interface for document evidence operations
type EvidenceService interface {
	UploadEvidence(ctx context.Context, scholarshipID int64, docType models.DocumentType, fileHeader *multipart.FileHeader, actor Actor) (*models.DocumentEvidence, error)
	ListEvidence(ctx context.Context, scholarshipID int64, actor Actor) ([]*models.DocumentEvidence, error)

	// SaveArtifact stores a generated document and attaches it as evidence.
	// It satisfies the artifact-store contract of the event handlers.
	SaveArtifact(ctx context.Context, scholarshipID int64, docType models.DocumentType, filename string, content []byte, mimeType string) error
}

// evidenceServiceImpl implements EvidenceService
type evidenceServiceImpl struct {
	scholarshipRepo *repositories.ScholarshipRepository
	evidenceRepo    *repositories.EvidenceRepository
	fileRepo        *repositories.FileRepository
	storage         filestorage.FileStorage
	logger          zerolog.Logger
}

// NewEvidenceService creates a new EvidenceService
func NewEvidenceService(
	scholarshipRepo *repositories.ScholarshipRepository,
	evidenceRepo *repositories.EvidenceRepository,
	fileRepo *repositories.FileRepository,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) EvidenceService {
	return &evidenceServiceImpl{
		scholarshipRepo: scholarshipRepo,
		evidenceRepo:    evidenceRepo,
		fileRepo:        fileRepo,
		storage:         storage,
		logger:          logger,
	}
}

// UploadEvidence stores an uploaded document and attaches it to the record as
// a new evidence version. Uploading never advances the lifecycle by itself;
// the applicant still has to fire the corresponding submit event, whose guard
// will find this evidence.
func (s *evidenceServiceImpl) UploadEvidence(ctx context.Context, scholarshipID int64, docType models.DocumentType, fileHeader *multipart.FileHeader, actor Actor) (*models.DocumentEvidence, error) {
	if !docType.IsValid() {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			fmt.Sprintf("unknown document type %q", docType))
	}
	if actor.Role == models.RoleApplicant && !applicantDocTypes[docType] {
		return nil, apperrors.NewForbiddenError(
			fmt.Sprintf("applicants cannot upload %s documents", docType))
	}
	if fileHeader.Size > maxEvidenceSize {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			"file exceeds the 10 MB evidence limit")
	}

	rec, err := s.scholarshipRepo.GetByID(ctx, scholarshipID)
	if err != nil {
		return nil, err
	}
	if !actor.ownsRecord(rec) {
		return nil, apperrors.ErrPermissionDenied
	}
	if rec.Status.IsTerminal() {
		return nil, apperrors.NewConflictError("record is closed and no longer accepts evidence")
	}

	fileURL, err := s.storage.SaveFile(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to store evidence file: %w", err)
	}

	fileID, err := s.fileRepo.CreateFile(ctx, &models.File{
		FileName:   fileHeader.Filename,
		FilePath:   s.storage.GetFullPath(fileURL),
		FileURL:    fileURL,
		FileSize:   fileHeader.Size,
		FileType:   fileHeader.Header.Get("Content-Type"),
		UploadedBy: &actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	ev := &models.DocumentEvidence{
		ScholarshipID: scholarshipID,
		DocumentType:  docType,
		FileID:        &fileID,
		UploadedBy:    &actor.UserID,
	}
	if _, err := s.evidenceRepo.Add(ctx, ev); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("recordId", scholarshipID).
		Str("documentType", string(docType)).
		Int("version", ev.Version).
		Msg("Evidence uploaded")
	return ev, nil
}

// ListEvidence returns all evidence attached to a record, newest first.
func (s *evidenceServiceImpl) ListEvidence(ctx context.Context, scholarshipID int64, actor Actor) ([]*models.DocumentEvidence, error) {
	rec, err := s.scholarshipRepo.GetByID(ctx, scholarshipID)
	if err != nil {
		return nil, err
	}
	if !actor.ownsRecord(rec) {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.evidenceRepo.ListByScholarship(ctx, scholarshipID)
}

// SaveArtifact persists a system-generated document (contract, receipt) and
// attaches it as evidence with no uploading user.
func (s *evidenceServiceImpl) SaveArtifact(ctx context.Context, scholarshipID int64, docType models.DocumentType, filename string, content []byte, mimeType string) error {
	fileURL, err := s.storage.SaveBytes(filename, content)
	if err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}

	fileID, err := s.fileRepo.CreateFile(ctx, &models.File{
		FileName: filename,
		FilePath: s.storage.GetFullPath(fileURL),
		FileURL:  fileURL,
		FileSize: int64(len(content)),
		FileType: mimeType,
	})
	if err != nil {
		return err
	}

	ev := &models.DocumentEvidence{
		ScholarshipID: scholarshipID,
		DocumentType:  docType,
		FileID:        &fileID,
	}
	if _, err := s.evidenceRepo.Add(ctx, ev); err != nil {
		return err
	}

	s.logger.Info().
		Int64("recordId", scholarshipID).
		Str("documentType", string(docType)).
		Str("file", filename).
		Msg("Artifact stored")
	return nil
}
