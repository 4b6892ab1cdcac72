package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
)

func newRecord(status models.Status) models.Scholarship {
	return models.Scholarship{
		ID:           42,
		StudentID:    7,
		PeriodID:     1,
		Career:       "Systems Engineering",
		AverageGrade: 8.7,
		Status:       status,
		Version:      1,
	}
}

func evidenceAlways(models.DocumentType) (bool, error) { return true, nil }
func evidenceNever(models.DocumentType) (bool, error)  { return false, nil }

func TestApplyHappyPathToPaid(t *testing.T) {
	steps := []struct {
		event Event
		actor models.RoleType
		want  models.Status
	}{
		{EventSubmitDocs, models.RoleApplicant, models.StatusDocsUploaded},
		{EventApproveDocs, models.RoleReviewer, models.StatusApproved},
		{EventGenerateContract, models.RoleReviewer, models.StatusContractGenerated},
		{EventUploadContract, models.RoleApplicant, models.StatusContractUploaded},
		{EventAcceptContract, models.RoleReviewer, models.StatusReadyForPayment},
		{EventRecordPayment, models.RoleReviewer, models.StatusPaid},
	}

	rec := newRecord(models.StatusSelected)
	for _, step := range steps {
		updated, ev, err := Apply(rec, step.event, step.actor, Input{HasEvidence: evidenceAlways})
		require.NoError(t, err, "step %s from %s", step.event, rec.Status)
		assert.Equal(t, step.want, updated.Status)
		assert.Equal(t, rec.Status, ev.From)
		assert.Equal(t, step.want, ev.To)
		assert.Equal(t, step.actor, ev.ActorRole)
		rec = updated
	}

	assert.True(t, rec.Status.IsTerminal())
	require.NotNil(t, rec.PaymentDate, "payment date is stamped when the payment is recorded")
}

func TestApplyRejectsUnknownEventForStatus(t *testing.T) {
	rec := newRecord(models.StatusSelected)

	_, _, err := Apply(rec, EventApproveDocs, models.RoleReviewer, Input{})
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestApplyRejectsWrongActor(t *testing.T) {
	rec := newRecord(models.StatusDocsUploaded)

	// Approving documents is reviewer work; the applicant may not do it.
	_, _, err := Apply(rec, EventApproveDocs, models.RoleApplicant, Input{})
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestApplyTerminalStatusesRefuseEverything(t *testing.T) {
	for _, status := range []models.Status{models.StatusPaid, models.StatusExcluded} {
		rec := newRecord(status)
		for _, event := range AllEvents {
			for _, actor := range []models.RoleType{models.RoleReviewer, models.RoleApplicant} {
				_, _, err := Apply(rec, event, actor, Input{HasEvidence: evidenceAlways})
				assert.ErrorIs(t, err, apperrors.ErrIllegalTransition,
					"%s must refuse %s by %s", status, event, actor)
			}
		}
	}
}

func TestApplyRejectionRequiresReason(t *testing.T) {
	rec := newRecord(models.StatusDocsUploaded)

	_, _, err := Apply(rec, EventRejectDocs, models.RoleReviewer, Input{})
	assert.ErrorIs(t, err, apperrors.ErrMissingReason)

	_, _, err = Apply(rec, EventRejectDocs, models.RoleReviewer, Input{Reason: "   "})
	assert.ErrorIs(t, err, apperrors.ErrMissingReason, "whitespace-only reasons do not count")

	updated, ev, err := Apply(rec, EventRejectDocs, models.RoleReviewer, Input{Reason: "bank certificate is illegible"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusChangesRequested, updated.Status)
	require.NotNil(t, updated.RejectionReason)
	assert.Equal(t, "bank certificate is illegible", *updated.RejectionReason)
	require.NotNil(t, ev.Reason)
	assert.Equal(t, "bank certificate is illegible", *ev.Reason)
}

func TestApplyClearsReasonOnExitFromRejectedState(t *testing.T) {
	rec := newRecord(models.StatusChangesRequested)
	reason := "previous rejection"
	rec.RejectionReason = &reason

	updated, _, err := Apply(rec, EventResubmitDocs, models.RoleApplicant, Input{HasEvidence: evidenceAlways})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocsUploaded, updated.Status)
	assert.Nil(t, updated.RejectionReason)
}

func TestApplyEvidenceGuard(t *testing.T) {
	rec := newRecord(models.StatusSelected)

	// No evidence callback at all.
	_, _, err := Apply(rec, EventSubmitDocs, models.RoleApplicant, Input{})
	assert.ErrorIs(t, err, apperrors.ErrMissingEvidence)

	// Callback answers "not attached".
	_, _, err = Apply(rec, EventSubmitDocs, models.RoleApplicant, Input{HasEvidence: evidenceNever})
	assert.ErrorIs(t, err, apperrors.ErrMissingEvidence)

	// The guard asks for the right document type.
	var asked models.DocumentType
	_, _, err = Apply(rec, EventSubmitDocs, models.RoleApplicant, Input{
		HasEvidence: func(d models.DocumentType) (bool, error) {
			asked = d
			return true, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentBankCert, asked)
}

func TestApplyFailureLeavesRecordUntouched(t *testing.T) {
	rec := newRecord(models.StatusDocsUploaded)
	before := rec

	got, _, err := Apply(rec, EventRejectDocs, models.RoleReviewer, Input{})
	require.Error(t, err)
	assert.Equal(t, before, got)
}

func TestApplyStampsPaymentDate(t *testing.T) {
	rec := newRecord(models.StatusReadyForPayment)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	updated, ev, err := Apply(rec, EventRecordPayment, models.RoleReviewer, Input{Now: now})
	require.NoError(t, err)
	require.NotNil(t, updated.PaymentDate)
	assert.Equal(t, now, *updated.PaymentDate)
	assert.Equal(t, now, ev.Timestamp)
	assert.Equal(t, models.DocumentPaymentReceipt, ev.Artifact)
}

func TestLegalActionsPerRole(t *testing.T) {
	assert.Equal(t, []Event{EventSubmitDocs},
		LegalActions(models.StatusSelected, models.RoleApplicant))
	assert.Empty(t, LegalActions(models.StatusSelected, models.RoleReviewer))

	assert.Equal(t, []Event{EventRejectDocs, EventApproveDocs},
		LegalActions(models.StatusDocsUploaded, models.RoleReviewer))
	assert.Empty(t, LegalActions(models.StatusDocsUploaded, models.RoleApplicant))

	assert.Empty(t, LegalActions(models.StatusPaid, models.RoleReviewer))
	assert.Empty(t, LegalActions(models.StatusExcluded, models.RoleApplicant))
}

func TestRequiresReason(t *testing.T) {
	assert.True(t, RequiresReason(EventRejectDocs))
	assert.True(t, RequiresReason(EventRejectContract))
	assert.False(t, RequiresReason(EventApproveDocs))
	assert.False(t, RequiresReason(EventRecordPayment))
}

func TestRequiredEvidence(t *testing.T) {
	doc, ok := RequiredEvidence(EventSubmitDocs)
	require.True(t, ok)
	assert.Equal(t, models.DocumentBankCert, doc)

	doc, ok = RequiredEvidence(EventUploadContract)
	require.True(t, ok)
	assert.Equal(t, models.DocumentContractSigned, doc)

	_, ok = RequiredEvidence(EventApproveDocs)
	assert.False(t, ok)
}

func TestEventIsValid(t *testing.T) {
	for _, event := range AllEvents {
		assert.True(t, event.IsValid())
	}
	assert.False(t, Event("DANCE").IsValid())
	assert.False(t, Event("").IsValid())
}
