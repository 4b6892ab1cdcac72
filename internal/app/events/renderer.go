package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmorales/becas-core/internal/app/lifecycle"
	"github.com/dmorales/becas-core/internal/app/models"
)

// PlainRenderer is the default artifact renderer. It produces a plain-text
// document carrying the record and transition details; deployments with a
// proper PDF pipeline replace it through the ArtifactRenderer interface.
type PlainRenderer struct{}

func (PlainRenderer) Render(_ context.Context, ev lifecycle.TransitionEvent) (string, []byte, string, error) {
	var title string
	switch ev.Artifact {
	case models.DocumentContractUnsigned:
		title = "SCHOLARSHIP CONTRACT"
	case models.DocumentPaymentReceipt:
		title = "PAYMENT RECEIPT"
	default:
		title = string(ev.Artifact)
	}

	body := fmt.Sprintf(
		"%s\n\nRecord: %d\nIssued: %s\nTransition: %s -> %s\nAuthorized by role: %s\n",
		title, ev.RecordID, ev.Timestamp.Format("2006-01-02 15:04:05"),
		ev.From, ev.To, ev.ActorRole,
	)
	filename := fmt.Sprintf("%s-%d-%s.txt", ev.Artifact, ev.RecordID, uuid.New().String())
	return filename, []byte(body), "text/plain", nil
}
