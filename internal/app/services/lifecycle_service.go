package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmorales/becas-core/internal/app/lifecycle"
	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/app/models/dto"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
)

// ScholarshipStore is the persistence surface the lifecycle service needs.
type ScholarshipStore interface {
	GetByID(ctx context.Context, id int64) (*models.Scholarship, error)
	UpdateWithVersion(ctx context.Context, s *models.Scholarship, expectedVersion int64) error
}

// EvidenceStore answers the machine's evidence guards.
type EvidenceStore interface {
	HasEvidence(ctx context.Context, scholarshipID int64, docType models.DocumentType) (bool, error)
	HasEvidenceSince(ctx context.Context, scholarshipID int64, docType models.DocumentType, since time.Time) (bool, error)
}

// EventPublisher fans applied transitions out to audit, notification and
// artifact collaborators.
type EventPublisher interface {
	Publish(ev lifecycle.TransitionEvent)
}

// LifecycleService defines the interface for award lifecycle operations
type LifecycleService interface {
	Transition(ctx context.Context, recordID int64, event lifecycle.Event, actor Actor, reason string) (*models.Scholarship, error)
	Actions(ctx context.Context, recordID int64, actor Actor) (*dto.ActionsResponse, error)
}

// resubmitEvents are the transitions whose evidence guard demands a NEW
// document version: evidence attached before the record entered its current
// rejected state does not satisfy them.
var resubmitEvents = map[lifecycle.Event]bool{
	lifecycle.EventResubmitDocs:     true,
	lifecycle.EventReuploadContract: true,
}

// lifecycleServiceImpl implements LifecycleService
type lifecycleServiceImpl struct {
	scholarships ScholarshipStore
	evidence     EvidenceStore
	publisher    EventPublisher
	logger       zerolog.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	scholarships ScholarshipStore,
	evidence EvidenceStore,
	publisher EventPublisher,
	logger zerolog.Logger,
) LifecycleService {
	return &lifecycleServiceImpl{
		scholarships: scholarships,
		evidence:     evidence,
		publisher:    publisher,
		logger:       logger,
	}
}

// Transition attempts one lifecycle event on a record. The update is guarded
// by the record's version: if another writer applied a transition between our
// read and our write, ErrConcurrentModification comes back and the caller
// must retry against fresh state. On success the applied event is published
// exactly once.
func (s *lifecycleServiceImpl) Transition(ctx context.Context, recordID int64, event lifecycle.Event, actor Actor, reason string) (*models.Scholarship, error) {
	if !event.IsValid() {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			fmt.Sprintf("unknown event %q", event))
	}

	rec, err := s.scholarships.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !actor.ownsRecord(rec) {
		return nil, apperrors.ErrPermissionDenied
	}

	// rec.UpdatedAt marks when the record entered its current status, so for
	// resubmission events only evidence uploaded after the rejection counts.
	evidenceAt := rec.UpdatedAt
	hasEvidence := func(docType models.DocumentType) (bool, error) {
		if resubmitEvents[event] {
			return s.evidence.HasEvidenceSince(ctx, recordID, docType, evidenceAt)
		}
		return s.evidence.HasEvidence(ctx, recordID, docType)
	}

	expectedVersion := rec.Version
	updated, ev, err := lifecycle.Apply(*rec, event, actor.Role, lifecycle.Input{
		Reason:      reason,
		HasEvidence: hasEvidence,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}
	ev.ActorID = &actor.UserID

	if err := s.scholarships.UpdateWithVersion(ctx, &updated, expectedVersion); err != nil {
		return nil, err
	}

	s.publisher.Publish(ev)
	s.logger.Info().
		Int64("recordId", recordID).
		Str("event", string(event)).
		Str("from", string(ev.From)).
		Str("to", string(ev.To)).
		Int64("actorId", actor.UserID).
		Msg("Lifecycle transition applied")
	return &updated, nil
}

// Actions returns the events the actor may attempt on the record right now.
func (s *lifecycleServiceImpl) Actions(ctx context.Context, recordID int64, actor Actor) (*dto.ActionsResponse, error) {
	rec, err := s.scholarships.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !actor.ownsRecord(rec) {
		return nil, apperrors.ErrPermissionDenied
	}

	actions := lifecycle.LegalActions(rec.Status, actor.Role)
	if actions == nil {
		actions = []lifecycle.Event{}
	}
	return &dto.ActionsResponse{Status: rec.Status, Actions: actions}, nil
}
