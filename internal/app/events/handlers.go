package events

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dmorales/becas-core/internal/app/lifecycle"
	"github.com/dmorales/becas-core/internal/app/models"
)

// HistoryStore persists one audit row per applied transition.
type HistoryStore interface {
	AddStatusHistory(ctx context.Context, h *models.StatusHistory) error
}

// AuditRecorder writes every transition to the status-history table.
type AuditRecorder struct {
	store  HistoryStore
	logger zerolog.Logger
}

// NewAuditRecorder creates the audit handler.
func NewAuditRecorder(store HistoryStore, logger zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{store: store, logger: logger}
}

func (a *AuditRecorder) Name() string { return "audit" }

func (a *AuditRecorder) Handle(ctx context.Context, ev lifecycle.TransitionEvent) error {
	return a.store.AddStatusHistory(ctx, &models.StatusHistory{
		ScholarshipID: ev.RecordID,
		FromStatus:    ev.From,
		ToStatus:      ev.To,
		ActorRole:     ev.ActorRole,
		ActorID:       ev.ActorID,
		Reason:        ev.Reason,
		CreatedAt:     ev.Timestamp,
	})
}

// RecipientResolver finds the applicant behind a scholarship record.
type RecipientResolver interface {
	GetApplicantContact(ctx context.Context, scholarshipID int64) (email, name string, err error)
}

// StatusMailer sends status-change notifications.
type StatusMailer interface {
	SendStatusChanged(toEmail, toName string, from, to models.Status, reason *string) error
}

// Notifier emails the applicant about every status change on their record.
type Notifier struct {
	resolver RecipientResolver
	mailer   StatusMailer
	logger   zerolog.Logger
}

// NewNotifier creates the notification handler.
func NewNotifier(resolver RecipientResolver, mailer StatusMailer, logger zerolog.Logger) *Notifier {
	return &Notifier{resolver: resolver, mailer: mailer, logger: logger}
}

func (n *Notifier) Name() string { return "notifier" }

func (n *Notifier) Handle(ctx context.Context, ev lifecycle.TransitionEvent) error {
	toEmail, toName, err := n.resolver.GetApplicantContact(ctx, ev.RecordID)
	if err != nil {
		return fmt.Errorf("resolving applicant for record %d: %w", ev.RecordID, err)
	}
	return n.mailer.SendStatusChanged(toEmail, toName, ev.From, ev.To, ev.Reason)
}

// ArtifactRenderer produces the bytes of a generated document. Rendering
// technology (PDF etc.) is a collaborator concern hidden behind this
// interface.
type ArtifactRenderer interface {
	Render(ctx context.Context, ev lifecycle.TransitionEvent) (filename string, content []byte, mimeType string, err error)
}

// ArtifactStore persists a generated document and attaches it to the record
// as evidence of the given type.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, scholarshipID int64, docType models.DocumentType, filename string, content []byte, mimeType string) error
}

// ArtifactGenerator reacts to transitions that announce an expected artifact
// (contract generation, payment recording) by rendering and storing it.
type ArtifactGenerator struct {
	renderer ArtifactRenderer
	store    ArtifactStore
	logger   zerolog.Logger
}

// NewArtifactGenerator creates the artifact handler.
func NewArtifactGenerator(renderer ArtifactRenderer, store ArtifactStore, logger zerolog.Logger) *ArtifactGenerator {
	return &ArtifactGenerator{renderer: renderer, store: store, logger: logger}
}

func (g *ArtifactGenerator) Name() string { return "artifacts" }

func (g *ArtifactGenerator) Handle(ctx context.Context, ev lifecycle.TransitionEvent) error {
	if ev.Artifact == "" {
		return nil
	}
	filename, content, mimeType, err := g.renderer.Render(ctx, ev)
	if err != nil {
		return fmt.Errorf("rendering %s for record %d: %w", ev.Artifact, ev.RecordID, err)
	}
	if err := g.store.SaveArtifact(ctx, ev.RecordID, ev.Artifact, filename, content, mimeType); err != nil {
		return fmt.Errorf("storing %s for record %d: %w", ev.Artifact, ev.RecordID, err)
	}
	g.logger.Info().
		Int64("recordId", ev.RecordID).
		Str("artifact", string(ev.Artifact)).
		Msg("Artifact generated")
	return nil
}
