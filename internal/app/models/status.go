package models

// Status is the lifecycle state of a scholarship record. The string values are
// wire-level and must not change; external consumers match on them exactly.
type Status string

const (
	StatusSelected          Status = "SELECTED"
	StatusExcluded          Status = "EXCLUDED"
	StatusDocsUploaded      Status = "DOCS_UPLOADED"
	StatusChangesRequested  Status = "CHANGES_REQUESTED"
	StatusApproved          Status = "APPROVED"
	StatusContractGenerated Status = "CONTRACT_GENERATED"
	StatusContractUploaded  Status = "CONTRACT_UPLOADED"
	StatusContractRejected  Status = "CONTRACT_REJECTED"
	StatusReadyForPayment   Status = "READY_FOR_PAYMENT"
	StatusPaid              Status = "PAID"
)

// AllStatuses lists every valid status, used for request validation.
var AllStatuses = []Status{
	StatusSelected,
	StatusExcluded,
	StatusDocsUploaded,
	StatusChangesRequested,
	StatusApproved,
	StatusContractGenerated,
	StatusContractUploaded,
	StatusContractRejected,
	StatusReadyForPayment,
	StatusPaid,
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusExcluded
}
