// Package lifecycle implements the award state machine. A transition is a
// pure function over a scholarship record: it either produces the fully
// updated record together with the event to publish, or an error and no
// change at all. Side effects (notification, audit, artifact generation)
// belong to subscribers of the emitted events, never to this package.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
)

// Event names an action an actor can attempt on a scholarship record.
type Event string

const (
	EventSubmitDocs       Event = "SUBMIT_DOCS"
	EventRejectDocs       Event = "REJECT_DOCS"
	EventApproveDocs      Event = "APPROVE_DOCS"
	EventResubmitDocs     Event = "RESUBMIT_DOCS"
	EventGenerateContract Event = "GENERATE_CONTRACT"
	EventUploadContract   Event = "UPLOAD_CONTRACT"
	EventRejectContract   Event = "REJECT_CONTRACT"
	EventAcceptContract   Event = "ACCEPT_CONTRACT"
	EventReuploadContract Event = "REUPLOAD_CONTRACT"
	EventRecordPayment    Event = "RECORD_PAYMENT"
)

// AllEvents lists every event, used for request validation.
var AllEvents = []Event{
	EventSubmitDocs,
	EventRejectDocs,
	EventApproveDocs,
	EventResubmitDocs,
	EventGenerateContract,
	EventUploadContract,
	EventRejectContract,
	EventAcceptContract,
	EventReuploadContract,
	EventRecordPayment,
}

// IsValid reports whether e is a known event.
func (e Event) IsValid() bool {
	for _, known := range AllEvents {
		if e == known {
			return true
		}
	}
	return false
}

// rule is one row of the transition table.
type rule struct {
	event       Event
	actor       models.RoleType
	to          models.Status
	needsReason bool
	// evidence, when set, is the document type that must be attached
	// before the transition may fire.
	evidence models.DocumentType
	// artifact, when set, is the document type a collaborator is expected
	// to generate in response to the emitted event.
	artifact models.DocumentType
}

// transitions is the single canonical transition table. Every piece of
// "which buttons does this actor see" logic derives from it via LegalActions;
// nothing else in the codebase is allowed to branch on raw status strings.
var transitions = map[models.Status][]rule{
	models.StatusSelected: {
		{event: EventSubmitDocs, actor: models.RoleApplicant, to: models.StatusDocsUploaded, evidence: models.DocumentBankCert},
	},
	models.StatusDocsUploaded: {
		{event: EventRejectDocs, actor: models.RoleReviewer, to: models.StatusChangesRequested, needsReason: true},
		{event: EventApproveDocs, actor: models.RoleReviewer, to: models.StatusApproved},
	},
	models.StatusChangesRequested: {
		{event: EventResubmitDocs, actor: models.RoleApplicant, to: models.StatusDocsUploaded, evidence: models.DocumentBankCert},
	},
	models.StatusApproved: {
		{event: EventGenerateContract, actor: models.RoleReviewer, to: models.StatusContractGenerated, artifact: models.DocumentContractUnsigned},
	},
	models.StatusContractGenerated: {
		{event: EventUploadContract, actor: models.RoleApplicant, to: models.StatusContractUploaded, evidence: models.DocumentContractSigned},
	},
	models.StatusContractUploaded: {
		{event: EventRejectContract, actor: models.RoleReviewer, to: models.StatusContractRejected, needsReason: true},
		{event: EventAcceptContract, actor: models.RoleReviewer, to: models.StatusReadyForPayment},
	},
	models.StatusContractRejected: {
		{event: EventReuploadContract, actor: models.RoleApplicant, to: models.StatusContractUploaded, evidence: models.DocumentContractSigned},
	},
	models.StatusReadyForPayment: {
		{event: EventRecordPayment, actor: models.RoleReviewer, to: models.StatusPaid, artifact: models.DocumentPaymentReceipt},
	},
	// PAID and EXCLUDED are terminal: no rows.
}

// EvidenceFunc answers whether evidence of the given type is attached to the
// record under transition. The machine treats the answer as a given input;
// it never fetches evidence itself.
type EvidenceFunc func(models.DocumentType) (bool, error)

// Input carries the caller-supplied context for a transition attempt.
type Input struct {
	Reason      string
	HasEvidence EvidenceFunc
	Now         time.Time
}

// TransitionEvent is emitted for every applied transition and consumed by
// audit, notification and artifact collaborators.
type TransitionEvent struct {
	RecordID  int64           `json:"recordId"`
	Event     Event           `json:"event"`
	From      models.Status   `json:"fromStatus"`
	To        models.Status   `json:"toStatus"`
	ActorRole models.RoleType `json:"actorRole"`
	ActorID   *int64          `json:"actorId,omitempty"`
	Reason    *string         `json:"reason,omitempty"`
	// Artifact, when set, tells collaborators which document they are
	// expected to generate for this record.
	Artifact  models.DocumentType `json:"artifact,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Apply attempts event on rec for the given actor role. On success it returns
// the updated copy of the record and the event to publish; on failure the
// returned error classifies the refusal and rec is untouched. The update is
// all-or-nothing: status, reason and side fields change together.
func Apply(rec models.Scholarship, event Event, actor models.RoleType, in Input) (models.Scholarship, TransitionEvent, error) {
	r, ok := findRule(rec.Status, event, actor)
	if !ok {
		return rec, TransitionEvent{}, fmt.Errorf("%w: %s by %s in %s",
			apperrors.ErrIllegalTransition, event, actor, rec.Status)
	}

	reason := strings.TrimSpace(in.Reason)
	if r.needsReason && reason == "" {
		return rec, TransitionEvent{}, fmt.Errorf("%w: %s", apperrors.ErrMissingReason, event)
	}

	if r.evidence != "" {
		if in.HasEvidence == nil {
			return rec, TransitionEvent{}, fmt.Errorf("%w: %s requires %s",
				apperrors.ErrMissingEvidence, event, r.evidence)
		}
		attached, err := in.HasEvidence(r.evidence)
		if err != nil {
			return rec, TransitionEvent{}, fmt.Errorf("checking evidence %s: %w", r.evidence, err)
		}
		if !attached {
			return rec, TransitionEvent{}, fmt.Errorf("%w: %s requires %s",
				apperrors.ErrMissingEvidence, event, r.evidence)
		}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	updated := rec
	updated.Status = r.to
	if r.needsReason {
		updated.RejectionReason = &reason
	} else {
		// Every transition out of a rejected state clears the reason.
		updated.RejectionReason = nil
	}
	if event == EventRecordPayment {
		paidAt := now
		updated.PaymentDate = &paidAt
	}

	ev := TransitionEvent{
		RecordID:  rec.ID,
		Event:     event,
		From:      rec.Status,
		To:        r.to,
		ActorRole: actor,
		Reason:    updated.RejectionReason,
		Artifact:  r.artifact,
		Timestamp: now,
	}
	return updated, ev, nil
}

// LegalActions returns the events the given actor role may attempt from the
// given status, in table order. The UI's "visible buttons" are exactly this
// set; an empty result for a terminal status is expected.
func LegalActions(status models.Status, actor models.RoleType) []Event {
	var events []Event
	for _, r := range transitions[status] {
		if r.actor == actor {
			events = append(events, r.event)
		}
	}
	return events
}

// RequiresReason reports whether the event is rejection-class and must carry
// a non-empty reason.
func RequiresReason(event Event) bool {
	for _, rules := range transitions {
		for _, r := range rules {
			if r.event == event {
				return r.needsReason
			}
		}
	}
	return false
}

// RequiredEvidence returns the document type the event's guard demands, if any.
func RequiredEvidence(event Event) (models.DocumentType, bool) {
	for _, rules := range transitions {
		for _, r := range rules {
			if r.event == event && r.evidence != "" {
				return r.evidence, true
			}
		}
	}
	return "", false
}

func findRule(status models.Status, event Event, actor models.RoleType) (rule, bool) {
	for _, r := range transitions[status] {
		if r.event == event && r.actor == actor {
			return r, true
		}
	}
	return rule{}, false
}
